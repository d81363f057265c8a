package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/ocr"
	"github.com/Veraticus/kantoor/internal/tui"
)

// Container size used when an editor is opened outside the TUI.
const headlessCanvas = 1000

func importsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "imports",
		Aliases: []string{"ocr"},
		Short:   "Manage OCR invoice imports",
	}

	cmd.AddCommand(
		importsListCmd(),
		importsGetCmd(),
		importsUploadCmd(),
		importsDeleteCmd(),
		importsCorrectCmd(),
		importsPreviewCmd(),
		importsConvertCmd(),
		importsBulkDeleteCmd(),
		importsBulkConvertCmd(),
	)
	return cmd
}

func importTable(imports ...model.InvoiceImport) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Bestand", "Status", "Pagina's", "Zekerheid", "Leverancier", "Totaal", "Aangemaakt"}}
		for _, imp := range imports {
			fields := imp.ExtractedData.Fields
			t.Add(
				strconv.Itoa(imp.ID),
				imp.FileName,
				string(imp.Status),
				strconv.Itoa(imp.PageCount),
				fmt.Sprintf("%.0f%%", imp.OCRConfidence*100),
				dash(fields[ocr.FieldSupplierName]),
				dash(fields[ocr.FieldTotal]),
				imp.CreatedAt.Format("2006-01-02"),
			)
		}
		return t
	}
}

func importsListCmd() *cobra.Command {
	var filter model.ImportFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imports",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			filter.Status = model.ImportStatus(status)
			page, err := a.client.ListImports(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := a.out.Print(page, importTable(page.Results...)); err != nil {
				return err
			}
			a.out.Message(cli.SubtleStyle.Render(fmt.Sprintf("%d van %d imports", len(page.Results), page.Count)))
			return nil
		}),
	}

	cmd.Flags().StringVar(&status, "status", "", "filter on status (pending, processing, extracted, review, completed, failed)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search in file name")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	return cmd
}

func importsGetCmd() *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one import with its extracted fields",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			imp, err := a.client.GetImport(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.out.Structured() {
				return a.out.Print(imp, nil)
			}

			if err := a.out.Print(imp, importTable(*imp)); err != nil {
				return err
			}
			if imp.ErrorMessage != "" {
				a.out.Message(cli.FormatError(imp.ErrorMessage))
			}

			editor := ocr.NewEditor(*imp, headlessCanvas, headlessCanvas)
			if err := a.out.Print(nil, fieldTable(editor, imp.UserCorrections)); err != nil {
				return err
			}
			if len(editor.Lines) > 0 {
				if err := a.out.Print(nil, lineTable(editor.Lines)); err != nil {
					return err
				}
			}
			if showText && imp.OCRText != "" {
				a.out.Raw(cli.RenderBox("OCR-tekst", imp.OCRText))
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&showText, "text", false, "also print the raw OCR text")
	return cmd
}

// fieldTable lists the merged field values; corrected fields show the extracted value too.
func fieldTable(e ocr.Editor, saved model.Corrections) func() cli.Table {
	return func() cli.Table {
		merged := e.MergedFields()
		names := make([]string, 0, len(merged))
		for name := range merged {
			names = append(names, name)
		}
		sort.Strings(names)

		t := cli.Table{Headers: []string{"Veld", "Waarde", "Origineel"}}
		for _, name := range names {
			original := ""
			if _, corrected := saved[name]; corrected {
				original = dash(e.Original(name))
			}
			t.Add(name, dash(merged[name]), original)
		}
		return t
	}
}

func lineTable(lines []model.ImportedLine) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"#", "Omschrijving", "Aantal", "Eenheid", "Prijs", "BTW %", "Totaal"}}
		for i, l := range lines {
			t.Add(
				strconv.Itoa(i+1),
				l.Omschrijving,
				l.Aantal.String(),
				dash(l.Eenheid),
				l.PrijsPerEenheid.StringFixed(2),
				l.BTWRate().String(),
				l.Totaal.StringFixed(2),
			)
		}
		return t
	}
}

func importsUploadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file.pdf>...",
		Short: "Upload documents for OCR",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), "upload", "")
			defer handler.Stop()

			var progress *cli.Progress
			if len(args) > 1 {
				progress = cli.NewProgress(cmd.ErrOrStderr(), len(args), "Uploaden")
			}

			uploaded := make([]model.InvoiceImport, 0, len(args))
			var failed []string
			for _, path := range args {
				if ctx.Err() != nil {
					break
				}
				imp, err := uploadImport(ctx, a, path)
				if progress != nil {
					progress.Step()
				}
				if err != nil {
					failed = append(failed, fmt.Sprintf("%s: %s", filepath.Base(path), errorText(err)))
					continue
				}
				uploaded = append(uploaded, *imp)
			}
			if progress != nil {
				progress.Finish()
			}

			if err := a.out.Print(uploaded, importTable(uploaded...)); err != nil {
				return err
			}
			for _, f := range failed {
				a.out.Message(cli.FormatError(f))
			}
			if len(failed) > 0 {
				return fmt.Errorf("%d van %d uploads mislukt", len(failed), len(args))
			}
			a.out.Success(fmt.Sprintf("%d import(s) geüpload", len(uploaded)))
			return ctx.Err()
		}),
	}
}

func uploadImport(ctx context.Context, a *app, path string) (*model.InvoiceImport, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return a.client.UploadImport(ctx, filepath.Base(path), content)
}

func importsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an import",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.confirm(cmd, fmt.Sprintf("Import #%d verwijderen?", id))
			if err != nil || !ok {
				return err
			}
			if err := a.client.DeleteImport(cmd.Context(), id); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Import #%d verwijderd", id))
			return nil
		}),
	}
}

func importsCorrectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "correct <id>",
		Short: "Open the OCR correction screen",
		Long: `Open the OCR correction screen for an import.

Pick a field, press r and drag a rectangle over the page to re-read that region, or
press enter to type a value. s saves all pending corrections in one request.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			opts, err := tuiOptions()
			if err != nil {
				return err
			}
			return tui.RunCorrection(cmd.Context(), ocr.NewSession(a.client, nil), id, opts...)
		}),
	}
}

// openEditor loads an import into a headless editor on the given page.
func openEditor(cmd *cobra.Command, session *ocr.Session, id, page int) (ocr.Editor, error) {
	editor, err := session.Open(cmd.Context(), id, headlessCanvas, headlessCanvas)
	if err != nil {
		return editor, err
	}
	if page > 1 {
		editor = session.Drive(cmd.Context(), editor, ocr.SetPage{Page: page})
		if editor.Page != page {
			return editor, fmt.Errorf("import %d heeft geen pagina %d", id, page)
		}
	}
	return editor, nil
}

func importsPreviewCmd() *cobra.Command {
	var page int
	var out string

	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Export a page with OCR boxes and corrections drawn on it",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			session := ocr.NewSession(a.client, nil)
			editor, err := openEditor(cmd, session, id, page)
			if err != nil {
				return err
			}

			if out == "" {
				out = fmt.Sprintf("import-%d-p%d.png", id, editor.Page)
			}
			var buf bytes.Buffer
			if err := session.Preview(cmd.Context(), editor, &buf); err != nil {
				return err
			}
			if err := writeOutput(cmd, out, buf.Bytes()); err != nil {
				return err
			}
			if out != "-" {
				a.out.Success(fmt.Sprintf("Voorbeeld opgeslagen in %s", out))
			}
			return nil
		}),
	}

	cmd.Flags().IntVar(&page, "page", 1, "page to render")
	cmd.Flags().StringVarP(&out, "out", "O", "", "output PNG file, - for stdout")
	return cmd
}

func importsConvertCmd() *cobra.Command {
	var (
		target      string
		invoiceType string
		categoryID  int
		notes       string
	)

	cmd := &cobra.Command{
		Use:   "convert <id>",
		Short: "Turn an import into an invoice or expense",
		Long: `Turn an import into an invoice or expense.

Field values are the extracted values with saved corrections applied. Amounts are
parsed in Dutch notation and line totals are recomputed as aantal × prijs.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			opts := ocr.ConversionOptions{
				Target:      model.ConversionTarget(target),
				InvoiceType: model.InvoiceType(invoiceType),
				Notes:       notes,
			}
			if categoryID > 0 {
				opts.CategoryID = &categoryID
			}

			session := ocr.NewSession(a.client, nil)
			editor, err := openEditor(cmd, session, id, 1)
			if err != nil {
				return err
			}
			resp, err := session.Convert(cmd.Context(), editor, opts)
			if err != nil {
				return err
			}

			if a.out.Structured() {
				return a.out.Print(resp, nil)
			}
			switch {
			case resp.InvoiceID != nil:
				a.out.Success(fmt.Sprintf("Factuur #%d aangemaakt uit import #%d", *resp.InvoiceID, id))
			case resp.ExpenseID != nil:
				a.out.Success(fmt.Sprintf("Uitgave #%d aangemaakt uit import #%d", *resp.ExpenseID, id))
			default:
				a.out.Success(dash(resp.Detail))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&target, "target", string(model.TargetInvoice), "what to create (invoice, expense)")
	cmd.Flags().StringVar(&invoiceType, "type", string(model.InvoicePurchase), "invoice type (purchase, credit, sales)")
	cmd.Flags().IntVar(&categoryID, "category", 0, "expense category id")
	cmd.Flags().StringVar(&notes, "notes", "", "notes on the created record")
	return cmd
}

func importsBulkDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-delete <id>[,<id>...]...",
		Short: "Delete several imports in one request",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ok, err := a.confirm(cmd, fmt.Sprintf("%d import(s) verwijderen?", len(ids)))
			if err != nil || !ok {
				return err
			}
			count, err := a.client.BulkDeleteImports(cmd.Context(), ids)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("%d import(s) verwijderd", count))
			return nil
		}),
	}
}

func importsBulkConvertCmd() *cobra.Command {
	var target, invoiceType string

	cmd := &cobra.Command{
		Use:   "bulk-convert <id>[,<id>...]...",
		Short: "Convert several imports using their extracted data as-is",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			req := api.BulkConvertRequest{
				Target:      model.ConversionTarget(target),
				InvoiceType: model.InvoiceType(invoiceType),
				IDs:         ids,
			}
			if req.Target == model.TargetExpense {
				req.InvoiceType = ""
			} else if !req.InvoiceType.Valid() {
				return fmt.Errorf("onbekend factuurtype %q", invoiceType)
			}

			resp, err := a.client.BulkConvert(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.out.Print(resp, func() cli.Table {
				t := cli.Table{Headers: []string{"Import", "Resultaat"}}
				for _, id := range resp.Converted {
					t.Add(strconv.Itoa(id), cli.FormatSuccess("omgezet"))
				}
				for _, k := range sortedKeys(resp.Errors) {
					t.Add(k, cli.FormatError(resp.Errors[k]))
				}
				return t
			}); err != nil {
				return err
			}
			if len(resp.Errors) > 0 {
				return fmt.Errorf("%d van %d imports niet omgezet", len(resp.Errors), len(ids))
			}
			return nil
		}),
	}

	cmd.Flags().StringVar(&target, "target", string(model.TargetInvoice), "what to create (invoice, expense)")
	cmd.Flags().StringVar(&invoiceType, "type", string(model.InvoicePurchase), "invoice type (purchase, credit, sales)")
	return cmd
}

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Manage supplier extraction patterns",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List extraction patterns",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				patterns, err := a.client.ListPatterns(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Print(patterns, patternTable(patterns...))
			}),
		},
		&cobra.Command{
			Use:   "get <id>",
			Short: "Show one pattern with its field expressions",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				p, err := a.client.GetPattern(cmd.Context(), id)
				if err != nil {
					return err
				}
				return a.out.Print(p, func() cli.Table {
					t := cli.Table{Headers: []string{"Veld", "Expressie"}}
					for _, field := range sortedKeys(p.FieldRegexes) {
						t.Add(field, p.FieldRegexes[field])
					}
					return t
				})
			}),
		},
		patternsCreateCmd(),
		patternsSetCmd(),
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a pattern",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ok, err := a.confirm(cmd, fmt.Sprintf("Patroon #%d verwijderen?", id))
				if err != nil || !ok {
					return err
				}
				if err := a.client.DeletePattern(cmd.Context(), id); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Patroon #%d verwijderd", id))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "test <id> <file.pdf>",
			Short: "Run a pattern against a sample document",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				content, err := readFile(args[1])
				if err != nil {
					return err
				}
				result, err := a.client.TestPattern(cmd.Context(), id, filepath.Base(args[1]), content)
				if err != nil {
					return err
				}
				if err := a.out.Print(result, func() cli.Table {
					t := cli.Table{Headers: []string{"Veld", "Gevonden"}}
					for _, field := range sortedKeys(result.Extracted) {
						t.Add(field, dash(result.Extracted[field]))
					}
					return t
				}); err != nil {
					return err
				}
				a.out.Message(cli.SubtleStyle.Render(fmt.Sprintf("zekerheid %.0f%%", result.Confidence*100)))
				return nil
			}),
		},
	)
	return cmd
}

func patternTable(patterns ...model.ExtractionPattern) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Naam", "Leverancier", "Trefwoorden", "Velden", "Gebruikt", "Actief"}}
		for _, p := range patterns {
			t.Add(
				strconv.Itoa(p.ID),
				p.Name,
				p.SupplierName,
				strings.Join(p.Keywords, ", "),
				strconv.Itoa(len(p.FieldRegexes)),
				strconv.Itoa(p.UseCount),
				yesNo(p.IsActive),
			)
		}
		return t
	}
}

func patternsCreateCmd() *cobra.Command {
	var p model.ExtractionPattern
	var fields []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an extraction pattern",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			regexes, err := parseFieldFlags(fields)
			if err != nil {
				return err
			}
			p.FieldRegexes = regexes
			created, err := a.client.CreatePattern(cmd.Context(), p)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Patroon #%d aangemaakt", created.ID))
			return a.out.Print(created, patternTable(*created))
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&p.Name, "name", "", "pattern name")
	flags.StringVar(&p.SupplierName, "supplier", "", "supplier the pattern applies to")
	flags.StringSliceVar(&p.Keywords, "keyword", nil, "keyword that identifies the supplier (repeatable)")
	flags.StringArrayVar(&fields, "field", nil, "field=regex (repeatable)")
	flags.BoolVar(&p.IsActive, "active", true, "use the pattern for new imports")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func patternsSetCmd() *cobra.Command {
	var fields []string
	var active string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Change field expressions or the active flag of a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			regexes, err := parseFieldFlags(fields)
			if err != nil {
				return err
			}
			p, err := a.client.GetPattern(cmd.Context(), id)
			if err != nil {
				return err
			}
			if p.FieldRegexes == nil {
				p.FieldRegexes = map[string]string{}
			}
			for field, re := range regexes {
				if re == "" {
					delete(p.FieldRegexes, field)
					continue
				}
				p.FieldRegexes[field] = re
			}
			if active != "" {
				if p.IsActive, err = strconv.ParseBool(active); err != nil {
					return fmt.Errorf("--active: %w", err)
				}
			}
			updated, err := a.client.UpdatePattern(cmd.Context(), *p)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Patroon #%d bijgewerkt", updated.ID))
			return nil
		}),
	}

	cmd.Flags().StringArrayVar(&fields, "field", nil, "field=regex, an empty regex removes the field (repeatable)")
	cmd.Flags().StringVar(&active, "active", "", "true or false")
	return cmd
}

func parseFieldFlags(values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, v := range values {
		field, re, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(field) == "" {
			return nil, fmt.Errorf("--field %q: expected field=regex", v)
		}
		out[strings.TrimSpace(field)] = re
	}
	return out, nil
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
