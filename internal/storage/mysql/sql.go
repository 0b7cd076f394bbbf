package mysql

// Partial-update upsert: absent fields (NULL params / zero IF guards) keep
// the stored value, so a moderation edit only writes what the operator sent.
// The (review_id, source) unique key is the sole identity of a record.
const upsertSelectionSQL = `
INSERT INTO review_selections
  (review_id, source, listing_id, listing_name, approved, display_on_website, notes)
VALUES
  (?, ?, ?, ?, COALESCE(?, 0), COALESCE(?, 0), ?)
ON DUPLICATE KEY UPDATE
  listing_id         = COALESCE(VALUES(listing_id), listing_id),
  listing_name       = COALESCE(VALUES(listing_name), listing_name),
  approved           = IF(?, VALUES(approved), approved),
  display_on_website = IF(?, VALUES(display_on_website), display_on_website),
  notes              = IF(?, VALUES(notes), notes),
  updated_at         = CURRENT_TIMESTAMP
`

const getSelectionSQL = `
SELECT review_id, source, listing_id, listing_name, approved, display_on_website, notes, updated_at
FROM review_selections
WHERE review_id = ? AND source = ?
`

// findAllSQL gets its WHERE clause appended dynamically from the filter;
// newest edits first, matching the dashboard's expectations.
const findAllSQL = `
SELECT review_id, source, listing_id, listing_name, approved, display_on_website, notes, updated_at
FROM review_selections
`

const findAllOrderSQL = ` ORDER BY updated_at DESC`

const deleteSelectionSQL = `
DELETE FROM review_selections WHERE review_id = ? AND source = ?
`
