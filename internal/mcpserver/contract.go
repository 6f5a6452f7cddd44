package mcpserver

// BookFormatContract describes the book record that LLM consumers read and
// write through the tools.
const BookFormatContract = `# Shelf Book Record

Every book in the library is a flat record:

| field  | type    | rules                                                  |
|--------|---------|--------------------------------------------------------|
| id     | integer | assigned by the store on creation, never changes       |
| title  | string  | required, 1-512 characters, surrounding spaces trimmed |
| author | string  | required, 1-512 characters, surrounding spaces trimmed |
| tags   | string  | optional free text, up to 512 characters               |

## Rules

1. **Titles are not unique.** Two books may share a title; always address a
   book by ` + "`id`" + ` when updating or deleting.
2. **Tags are opaque.** Store them however the user writes them (for example
   ` + "`scifi, classic`" + `). Nothing parses them.
3. **Updates overwrite every field.** Send the full record, not a patch.
4. Use ` + "`find_book`" + ` to turn exact title/author/tags into an id.

## Example

` + "```" + `json
{"id": 3, "title": "Dune", "author": "Frank Herbert", "tags": "scifi, classic"}
` + "```" + `
`
