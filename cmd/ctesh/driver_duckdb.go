//go:build cgo

package main

import _ "github.com/marcboeker/go-duckdb"
