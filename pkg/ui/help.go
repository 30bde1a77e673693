package ui

const helpMarkdown = `# Keys

## Moving

| Key | Action |
|-----|--------|
| ↑ ↓ / k j | Previous / next row |
| ← → / h l | Previous / next column |
| g / G | First / last row |
| PgUp / PgDn | Half a page |

## Editing

| Key | Action |
|-----|--------|
| Enter / e | Edit the selected cell |
| Enter / Esc | Finish editing |
| Tab / Shift+Tab | Finish and move to the next / previous column |
| Ctrl+V | Paste from the clipboard |

Numeric cells only accept digits, ` + "`.`" + ` and ` + "`-`" + `. Invalid values stay on
the cell, marked, and are never saved.

## Rows

| Key | Action |
|-----|--------|
| Space | Expand or collapse sub-rows |
| E / C | Expand / collapse everything |
| a | Add a sub-row (when allowed) |
| x | Remove the row and its sub-rows (when allowed) |

Press ` + "`?`" + ` or Esc to close, ` + "`q`" + ` to quit.
`
