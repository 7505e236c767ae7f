// Package web embeds the page shells, static assets, default data files and
// default content shipped with the binary.
package web

import (
	"embed"
	"io/fs"
)

//go:embed shells static data content
var files embed.FS

// Shells returns the page shell documents.
func Shells() fs.FS { return sub("shells") }

// Static returns the stylesheet and client script.
func Static() fs.FS { return sub("static") }

// Data returns a file system holding data/riskTables.json and
// data/riskSummaryMessages.json, laid out as the pages request them.
func Data() fs.FS { return files }

// Content returns the intro markdown and cards.yaml.
func Content() fs.FS { return sub("content") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return f
}
