package commands

import (
	"fmt"
	"sort"

	"github.com/solvang/webvault/internal/export/paths"
	"github.com/solvang/webvault/internal/vault"
)

// DiscoverCmd implements the 'discover' command. It enumerates the vault
// and prints the target path each entry would export to, without building.
type DiscoverCmd struct {
	Vault string `help:"Vault directory (overrides config)"`
}

func (d *DiscoverCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root, d.Vault, "")
	if err != nil {
		return err
	}

	source, err := vault.Open(cfg)
	if err != nil {
		return err
	}
	entries, err := source.List()
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].SourcePath < entries[j].SourcePath })

	sourcePaths := make([]string, 0, len(entries))
	for _, e := range entries {
		sourcePaths = append(sourcePaths, e.SourcePath)
	}
	mapper := paths.NewMapper(cfg.Export.WebStyleNames)
	mapper.SetRoot(paths.DetectExportRoot(sourcePaths))
	for _, e := range entries {
		mapper.Assign(e.SourcePath)
	}

	docs, attachments := 0, 0
	for _, e := range entries {
		target, _ := mapper.TargetOf(e.SourcePath)
		kind := "attachment"
		if e.IsDocument() {
			kind = "page"
			docs++
		} else {
			attachments++
		}
		fmt.Printf("%-10s %s -> %s\n", kind, e.SourcePath, target)
	}
	fmt.Printf("\n%d pages, %d attachments in %s\n", docs, attachments, source.Root())
	return nil
}
