package store

// Queries shared by both backends. Placeholders are added per backend where
// a query takes parameters.
const (
	queryCompaniesCount = `SELECT employers.name, COUNT(*) AS total_vacancies
		FROM employers
		JOIN vacancies ON vacancies.employer_id = employers.id
		GROUP BY employers.name
		ORDER BY total_vacancies DESC, employers.name`

	queryTopSalaries = `SELECT employers.name, vacancies.name, vacancies.top_salary, vacancies.link
		FROM employers
		JOIN vacancies ON vacancies.employer_id = employers.id
		WHERE vacancies.top_salary IS NOT NULL
		ORDER BY vacancies.top_salary DESC, vacancies.vacancy_id
		LIMIT 15`

	queryAboveAverage = `SELECT vacancy_id, employer_id, name, link, bottom_salary, top_salary,
			currency, gross, responsibilities, requirements
		FROM vacancies
		WHERE top_salary > (SELECT AVG(top_salary) FROM vacancies)
		ORDER BY top_salary DESC, vacancy_id`

	queryListVacancies = `SELECT vacancy_id, employer_id, name, link, bottom_salary, top_salary,
			currency, gross, responsibilities, requirements
		FROM vacancies
		ORDER BY vacancy_id`

	queryListEmployers = `SELECT id, name, link, address FROM employers ORDER BY id`

	sqliteQueryAverageSalaries = `SELECT name, ROUND(AVG(top_salary), 2) AS avg_salary
		FROM vacancies
		WHERE top_salary IS NOT NULL
		GROUP BY name
		ORDER BY avg_salary DESC, name
		LIMIT 15`

	postgresQueryAverageSalaries = `SELECT name, ROUND(AVG(top_salary), 2)::float8 AS avg_salary
		FROM vacancies
		WHERE top_salary IS NOT NULL
		GROUP BY name
		ORDER BY avg_salary DESC, name
		LIMIT 15`
)
