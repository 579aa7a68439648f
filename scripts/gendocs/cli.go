package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/bankdash/internal/catalog"
	"github.com/leapstack-labs/bankdash/internal/cli"
	"github.com/leapstack-labs/bankdash/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCLIDocs writes index.md plus one page per visible command,
// nested commands included.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	root := cli.NewRootCmd()
	pages := map[string][]byte{"index": cliIndex(root, catalog.Default(), getConfigSchema())}

	var walk func(parent *cobra.Command)
	walk = func(parent *cobra.Command) {
		for _, cmd := range visibleCommands(parent) {
			pages[pageName(cmd)] = commandPage(cmd)
			walk(cmd)
		}
	}
	walk(root)

	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(outDir, name+".md"), body, 0600); err != nil {
			return fmt.Errorf("failed to write %s.md: %w", name, err)
		}
		log.Printf("  Generated %s.md", name)
	}
	return nil
}

// visibleCommands returns the documented children of parent.
func visibleCommands(parent *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range parent.Commands() {
		if cmd.Hidden || !cmd.IsAvailableCommand() || cmd.Name() == "help" {
			continue
		}
		out = append(out, cmd)
	}
	return out
}

// pageName is the command path without the binary name, e.g. "completion-bash".
func pageName(cmd *cobra.Command) string {
	path := strings.Fields(cmd.CommandPath())
	return strings.Join(path[1:], "-")
}

func cliIndex(root *cobra.Command, cat *catalog.Catalog, schema []ConfigField) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter("CLI Reference", "Command-line interface reference for bankdash")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph(root.Short)
	w.CodeBlock("bash", "go install github.com/leapstack-labs/bankdash/cmd/bankdash@latest\nbankdash <command> [options]")

	w.Header(2, "Commands")
	var rows [][]string
	for _, cmd := range visibleCommands(root) {
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), pageName(cmd))
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}
	w.Table([]string{"Command", "Description"}, rows)

	w.Header(2, "Global Options")
	w.Paragraph("Accepted by every command. The config key column names the `bankdash.yaml` key a flag overrides.")
	writeFlags(w, root.PersistentFlags(), true)

	writePanelEndpoints(w, root.PersistentFlags(), cat)
	writeEnvironment(w, schema)

	w.Header(2, "Exit Codes")
	w.Table([]string{"Code", "Meaning"}, [][]string{
		{InlineCode("0"), "Success, including fallback output after a failed fetch"},
		{InlineCode("1"), "Error; details are written to stderr"},
	})

	return w.Bytes()
}

// writePanelEndpoints documents how each catalog panel gets its module API.
func writePanelEndpoints(w *MarkdownWriter, flags *pflag.FlagSet, cat *catalog.Catalog) {
	w.Header(2, "Panel Endpoints")
	w.Paragraph("Analyser panels read their modules from `endpoints.<panel>`. A panel without an endpoint renders its built-in fallback tiles.")

	var rows [][]string
	for _, panel := range cat.Panels() {
		key := "endpoints." + string(panel.ID)
		flagName := ""
		flags.VisitAll(func(f *pflag.Flag) {
			if k, ok := config.FlagKey(f.Name); ok && k == key {
				flagName = InlineCode("--" + f.Name)
			}
		})
		if flagName == "" {
			continue
		}
		startup := "Fetched on start"
		if panel.Interactive {
			startup = "Prefills the input; connected from the panel"
		}
		rows = append(rows, []string{panel.Title, InlineCode(key), flagName, InlineCode(config.EnvVar(key)), startup})
	}
	w.Table([]string{"Panel", "Config key", "Flag", "Variable", "At startup"}, rows)
}

// writeEnvironment lists the variable of every config key.
func writeEnvironment(w *MarkdownWriter, schema []ConfigField) {
	w.Header(2, "Environment Variables")
	w.Paragraph(fmt.Sprintf("Every key can be set with a `%s` variable; dots in nested keys become a double underscore. Variables are also read from `.env` (see `--env-file`). Flags override variables, which override the config file.", config.EnvPrefix))

	rows := make([][]string, 0, len(schema))
	for _, f := range schema {
		rows = append(rows, []string{InlineCode(config.EnvVar(f.Key())), InlineCode(f.Key()), f.Description})
	}
	w.Table([]string{"Variable", "Config key", "Description"}, rows)
}

func commandPage(cmd *cobra.Command) []byte {
	w := NewMarkdownWriter()
	w.Frontmatter(cmd.CommandPath(), cmd.Short)
	w.GeneratedMarker()

	w.Header(1, cmd.CommandPath())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	w.Paragraph(desc)

	w.Header(2, "Usage")
	usage := cmd.UseLine()
	if cmd.HasAvailableSubCommands() {
		usage = cmd.CommandPath() + " <subcommand> [options]"
	}
	w.CodeBlock("bash", usage)

	if len(cmd.Aliases) > 0 {
		aliases := make([]string, len(cmd.Aliases))
		for i, a := range cmd.Aliases {
			aliases[i] = InlineCode(a)
		}
		w.Header(2, "Aliases")
		w.BulletList(aliases)
	}

	if subs := visibleCommands(cmd); len(subs) > 0 {
		w.Header(2, "Subcommands")
		var rows [][]string
		for _, sub := range subs {
			link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(sub.Name()), pageName(sub))
			rows = append(rows, []string{link, cleanDescription(sub.Short)})
		}
		w.Table([]string{"Subcommand", "Description"}, rows)
	}

	if cmd.HasAvailableLocalFlags() {
		w.Header(2, "Options")
		writeFlags(w, cmd.LocalFlags(), false)
	}
	if cmd.HasAvailableInheritedFlags() {
		w.Paragraph("Global options are listed in the [CLI reference](/cli/).")
	}

	if cmd.Example != "" {
		w.Header(2, "Examples")
		w.CodeBlock("bash", dedent(cmd.Example))
	}

	return w.Bytes()
}

// writeFlags writes a flag table. withKeys adds the config key each flag sets.
func writeFlags(w *MarkdownWriter, flags *pflag.FlagSet, withKeys bool) {
	headers := []string{"Flag", "Type", "Default", "Description"}
	if withKeys {
		headers = append(headers, "Config key")
	}

	var rows [][]string
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := InlineCode("--" + f.Name)
		if f.Shorthand != "" {
			name = InlineCode("-"+f.Shorthand) + ", " + name
		}
		def := "-"
		if f.DefValue != "" && f.DefValue != "0s" && f.DefValue != "[]" {
			def = InlineCode(f.DefValue)
		}
		row := []string{name, f.Value.Type(), def, cleanDescription(f.Usage)}
		if withKeys {
			key := "-"
			if k, ok := config.FlagKey(f.Name); ok {
				key = InlineCode(k)
			}
			row = append(row, key)
		}
		rows = append(rows, row)
	})
	w.Table(headers, rows)
}

// dedent strips the indentation shared by all non-blank lines.
func dedent(text string) string {
	lines := strings.Split(strings.Trim(text, "\n"), "\n")

	prefix, first := "", true
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
		if first {
			prefix, first = indent, false
			continue
		}
		for !strings.HasPrefix(indent, prefix) {
			prefix = prefix[:len(prefix)-1]
		}
	}

	for i, line := range lines {
		lines[i] = strings.TrimRight(strings.TrimPrefix(line, prefix), " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
