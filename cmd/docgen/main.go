package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"gopkg.in/yaml.v3"

	"github.com/wxjw/Vanka/pkg/docgen"
	"github.com/wxjw/Vanka/pkg/docgen/placement"
)

const version = "0.3.0"

const defaultCatalog = "templates.yaml"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return 1
	}

	var err error
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "docgen version %s\n", version)
	case "render":
		err = renderCmd(args[1:], stdout, stderr)
	case "normalize":
		err = normalizeCmd(args[1:], stdout, stderr)
	case "stamp":
		err = stampCmd(args[1:], stdout, stderr)
	case "templates":
		err = templatesCmd(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		usage(stdout)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		usage(stderr)
		return 1
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "docgen %s: %v\n", args[0], err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "docgen - DOCX templates and PDF stamps")
	fmt.Fprintln(w, "\nUsage: docgen <command> [arguments]")
	fmt.Fprintln(w, "\nCommands:")
	fmt.Fprintln(w, "  render     Render a DOCX template with a JSON or YAML data file")
	fmt.Fprintln(w, "  normalize  Rewrite bracket tokens into commands without rendering")
	fmt.Fprintln(w, "  stamp      Draw a PNG or JPEG stamp onto pages of a PDF")
	fmt.Fprintln(w, "  templates  List the entries of a template catalog")
	fmt.Fprintln(w, "  version    Show version information")
}

func renderCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.SetOutput(stderr)
	templatePath := fs.String("template", "", "DOCX template file")
	key := fs.String("key", "", "template key in the catalog")
	catalogPath := fs.String("catalog", defaultCatalog, "template catalog (YAML or JSON)")
	dataPath := fs.String("data", "", "data file (JSON or YAML); empty renders with no data")
	output := fs.String("o", "", "output file; defaults to a name built from -meta")
	meta := fs.String("meta", "", "project,doctype,date used for the default output name")
	interactive := fs.Bool("i", false, "choose the template from the catalog interactively")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := loadData(*dataPath)
	if err != nil {
		return err
	}

	engine := docgen.New()
	var out []byte
	switch {
	case *templatePath != "":
		template, err := os.ReadFile(*templatePath)
		if err != nil {
			return err
		}
		if out, err = engine.Render(template, data); err != nil {
			return err
		}
	case *key != "" || *interactive:
		catalog, err := docgen.LoadCatalog(*catalogPath)
		if err != nil {
			return err
		}
		if *key == "" {
			if *key, err = chooseTemplate(catalog); err != nil {
				return err
			}
		}
		engine = docgen.NewWithOptions(docgen.WithCatalog(catalog))
		if out, err = engine.RenderByKey(*key, data); err != nil {
			return err
		}
	default:
		return errors.New("one of -template, -key or -i is required")
	}

	name := *output
	if name == "" {
		name = docgen.SanitizeFileName(docgen.DocumentFileName(parseMeta(*meta)))
	}
	if err := os.WriteFile(name, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s (%d bytes)\n", name, len(out))
	return nil
}

func normalizeCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("normalize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "", "output file; defaults to overwriting the input")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("expected exactly one DOCX file")
	}

	input := fs.Arg(0)
	archive, err := os.ReadFile(input)
	if err != nil {
		return err
	}
	out, changed, err := docgen.New().Normalize(archive)
	if err != nil {
		return err
	}
	if !changed {
		fmt.Fprintf(stdout, "%s has no bracket tokens\n", input)
		if *output == "" {
			return nil
		}
	}

	name := *output
	if name == "" {
		name = input
	}
	if err := os.WriteFile(name, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s\n", name)
	return nil
}

func stampCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("stamp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	pdfPath := fs.String("pdf", "", "PDF file to stamp")
	stampPath := fs.String("stamp", "", "PNG or JPEG stamp image")
	placementsArg := fs.String("placements", "", "placement JSON, or @file to read it from a file")
	output := fs.String("o", "", "output file name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *pdfPath == "" || *stampPath == "" || *placementsArg == "" {
		return errors.New("-pdf, -stamp and -placements are required")
	}

	pdf, err := os.ReadFile(*pdfPath)
	if err != nil {
		return err
	}
	stamp, err := os.ReadFile(*stampPath)
	if err != nil {
		return err
	}
	placements, err := readPlacements(*placementsArg)
	if err != nil {
		return err
	}

	out, err := docgen.New().StampImages(pdf, stamp, placements)
	if err != nil {
		return err
	}

	name := docgen.EnsurePDFExtension(docgen.SanitizeFileName(*output))
	if err := os.WriteFile(name, out, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Wrote %s (%d placements)\n", name, len(placements))
	return nil
}

func templatesCmd(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	fs.SetOutput(stderr)
	catalogPath := fs.String("catalog", defaultCatalog, "template catalog (YAML or JSON)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	catalog, err := docgen.LoadCatalog(*catalogPath)
	if err != nil {
		return err
	}
	for _, entry := range catalog.Templates {
		label := entry.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(stdout, "%-20s %-30s %s\n", entry.Key, label, catalog.Path(entry))
	}
	return nil
}

// loadData reads a JSON or YAML mapping. JSON is read by the YAML decoder.
func loadData(path string) (map[string]any, error) {
	data := map[string]any{}
	if path == "" {
		return data, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func parseMeta(meta string) (project, docType, date string) {
	parts := strings.SplitN(meta, ",", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}

func readPlacements(arg string) ([]placement.Descriptor, error) {
	raw := []byte(arg)
	if strings.HasPrefix(arg, "@") {
		var err error
		if raw, err = os.ReadFile(arg[1:]); err != nil {
			return nil, err
		}
	}
	return placement.Parse(raw)
}

func chooseTemplate(catalog *docgen.Catalog) (string, error) {
	if len(catalog.Templates) == 0 {
		return "", errors.New("catalog has no templates")
	}
	options := make([]string, len(catalog.Templates))
	for i, entry := range catalog.Templates {
		options[i] = entry.Key
		if entry.Label != "" {
			options[i] = fmt.Sprintf("%s (%s)", entry.Key, entry.Label)
		}
	}

	var choice int
	prompt := &survey.Select{
		Message: "Template:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", errors.New("cancelled")
		}
		return "", err
	}
	return catalog.Templates[choice].Key, nil
}
