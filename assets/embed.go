// assets/embed.go
//
// Embedded defaults shipped with the binary:
//   - categories.json: the default ranked dataset (used when WORDS_FILE is unset).
//   - sql/*.sql:       schema migrations applied at startup.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed categories.json
var categories []byte

//go:embed sql/*.sql
var migrations embed.FS

// Categories returns the raw embedded dataset JSON.
func Categories() []byte {
	return categories
}

// Migrations returns the embedded migration files rooted at "sql".
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "sql")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}
