package mysql

const insertSearchSQL = `
INSERT INTO search_log
  (keyword, query, status, result_bytes, duration_ms)
VALUES
  (?, ?, ?, ?, ?)
`

// Keywords are grouped case-insensitively; MIN() picks one spelling.
const topKeywordsSQL = `
SELECT MIN(keyword) AS keyword, COUNT(*) AS n
FROM search_log
WHERE keyword IS NOT NULL
  AND CHAR_LENGTH(TRIM(keyword)) >= 2
  AND status <> 'error'
  AND created_at >= ?
GROUP BY LOWER(TRIM(keyword))
ORDER BY n DESC, keyword ASC
LIMIT ?
`

const purgeSearchesSQL = `DELETE FROM search_log WHERE created_at < ?`
