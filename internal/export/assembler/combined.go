package assembler

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"log/slog"
	"strings"

	"github.com/solvang/webvault/internal/export/index"
	"github.com/solvang/webvault/internal/export/paths"
	"github.com/solvang/webvault/internal/export/template"
	"github.com/solvang/webvault/internal/logfields"
	"github.com/solvang/webvault/internal/util/sets"
)

// writeCombined merges every page into one self-contained master document.
// Page fragments and records are embedded as inert data nodes in the head,
// addressable at runtime by target path key; duplicate keys are skipped.
func (a *Assembler) writeCombined(ctx context.Context, siteIndex *index.SiteIndex, states []*pageState, summary *Summary) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	buf.WriteString("<title>" + htmltemplate.HTMLEscapeString(a.cfg.Site.Name) + "</title>\n")
	buf.WriteString("<style>")
	buf.Write(template.DefaultCSS())
	buf.WriteString("</style>\n")

	if data, err := siteIndex.Manifest().ToJSON(); err == nil {
		writeDataScript(&buf, "data-vault-manifest", "", data)
	} else {
		slog.Warn("Manifest not embedded", logfields.Error(err))
		summary.Warnings++
	}

	embedded := sets.New[string]()
	for _, st := range states {
		if ctx.Err() != nil {
			summary.Canceled = true
			return
		}
		if embedded.Has(st.target) {
			continue
		}
		embedded.Add(st.target)

		rec := st.builder.Record()
		recJSON, err := rec.ToJSON()
		if err != nil {
			a.pageFailed(rec.SourcePath, err, summary)
			continue
		}

		buf.WriteString(`<template data-page-path="` + htmltemplate.HTMLEscapeString(st.target) + `">`)
		buf.Write(st.content)
		buf.WriteString("</template>\n")
		writeDataScript(&buf, "data-page-meta", st.target, recJSON)
	}

	buf.WriteString("</head>\n<body>\n")
	buf.WriteString("<noscript>This document embeds the exported vault as data nodes and needs scripting to browse.</noscript>\n")
	buf.WriteString("</body>\n</html>\n")

	name := paths.Slugify(a.cfg.Site.Name)
	if name == "" {
		name = "site"
	}
	target := name + ".html"
	if err := a.store.WriteArtifact(ctx, target, buf.Bytes()); err != nil {
		slog.Warn("Combined document not written", logfields.TargetPath(target), logfields.Error(err))
		summary.Warnings++
		return
	}
	slog.Info("Combined document written",
		logfields.TargetPath(target), slog.Int("pages", len(embedded)))
}

// writeDataScript emits an inert JSON node. "</" is escaped so payload
// content can never terminate the script element early.
func writeDataScript(buf *bytes.Buffer, attr, key string, data []byte) {
	buf.WriteString(`<script type="application/json" ` + attr)
	if key != "" {
		buf.WriteString(`="` + htmltemplate.HTMLEscapeString(key) + `"`)
	}
	buf.WriteString(">")
	buf.WriteString(strings.ReplaceAll(string(data), "</", `<\/`))
	buf.WriteString("</script>\n")
}
