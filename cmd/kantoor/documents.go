package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/api"
	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/signing"
)

func documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "documents",
		Aliases: []string{"docs"},
		Short:   "Manage documents awaiting a signature",
	}

	cmd.AddCommand(
		documentsListCmd(),
		documentsGetCmd(),
		documentsUploadCmd(),
		documentsDeleteCmd(),
		documentsSignCmd(),
		documentsDownloadCmd(),
		documentsPageCmd(),
		documentsEmailCmd(),
	)
	return cmd
}

func documentTable(docs ...model.Document) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Titel", "Bestand", "Status", "Pagina's", "Aangemaakt", "Getekend door"}}
		for _, d := range docs {
			t.Add(
				strconv.Itoa(d.ID),
				d.Title,
				d.FileName,
				string(d.Status),
				strconv.Itoa(d.PageCount),
				d.CreatedAt.Format("2006-01-02"),
				dash(d.SignedBy),
			)
		}
		return t
	}
}

func documentsListCmd() *cobra.Command {
	var filter model.DocumentFilter
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			filter.Status = model.DocumentStatus(status)
			page, err := a.client.ListDocuments(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := a.out.Print(page, documentTable(page.Results...)); err != nil {
				return err
			}
			a.out.Message(cli.SubtleStyle.Render(fmt.Sprintf("%d van %d documenten", len(page.Results), page.Count)))
			return nil
		}),
	}

	cmd.Flags().StringVar(&status, "status", "", "filter on status (pending, signed)")
	cmd.Flags().StringVar(&filter.Search, "search", "", "search in title and file name")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	return cmd
}

func documentsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one document",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := a.client.GetDocument(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Print(doc, documentTable(*doc))
		}),
	}
}

func documentsUploadCmd() *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "upload <file.pdf>",
		Short: "Upload a PDF for signing",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			content, err := readFile(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = fileStem(args[0])
			}
			doc, err := a.client.UploadDocument(cmd.Context(), model.DocumentUpload{
				Title:       title,
				Description: description,
				FileName:    filepath.Base(args[0]),
				Content:     content,
			})
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Document #%d geüpload", doc.ID))
			return a.out.Print(doc, documentTable(*doc))
		}),
	}

	cmd.Flags().StringVar(&title, "title", "", "document title (default: file name)")
	cmd.Flags().StringVar(&description, "description", "", "document description")
	return cmd
}

func documentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			ok, err := a.confirm(cmd, fmt.Sprintf("%d document(en) verwijderen?", len(ids)))
			if err != nil || !ok {
				return err
			}
			for _, id := range ids {
				if err := a.client.DeleteDocument(cmd.Context(), id); err != nil {
					return fmt.Errorf("document %d: %w", id, err)
				}
				a.out.Success(fmt.Sprintf("Document #%d verwijderd", id))
			}
			return nil
		}),
	}
}

func documentsSignCmd() *cobra.Command {
	var (
		imagePath  string
		savedID    int
		useDefault bool
		pos        model.SignaturePosition
		save       bool
		name       string
	)

	cmd := &cobra.Command{
		Use:   "sign <id>",
		Short: "Place a signature on a document",
		Long: `Place a signature on a document page.

The signature comes from a PNG/JPEG file (--image), a saved signature (--saved) or
the default saved signature (--default). Position and width are percentages of the
page; they are clamped to the page the same way the signing pad does.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			pad := signing.NewPad()
			switch {
			case imagePath != "":
				data, err := readFile(imagePath)
				if err != nil {
					return err
				}
				if pad, err = pad.SetImage(data); err != nil {
					return err
				}
			case savedID > 0 || useDefault:
				if pad, err = signing.LoadSaved(ctx, a.client, pad, savedID); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --image, --saved or --default is required")
			}

			pad = pad.SetWidth(pos.Width).Place(pos)

			doc, err := signing.Sign(ctx, a.client, id, pad, save, name)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Document #%d getekend op pagina %d", doc.ID, pad.Position.Page))
			return a.out.Print(doc, documentTable(*doc))
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&imagePath, "image", "", "signature image file")
	flags.IntVar(&savedID, "saved", 0, "id of a saved signature")
	flags.BoolVar(&useDefault, "default", false, "use the default saved signature")
	flags.IntVar(&pos.Page, "page", 1, "page to sign")
	flags.Float64Var(&pos.X, "x", 60, "left edge in percent of the page width")
	flags.Float64Var(&pos.Y, "y", 80, "top edge in percent of the page height")
	flags.Float64Var(&pos.Width, "width", signing.DefaultWidth, "signature width in percent of the page width")
	flags.BoolVar(&save, "save", false, "save the signature for later use")
	flags.StringVar(&name, "name", "", "name for the saved signature")
	cmd.MarkFlagsMutuallyExclusive("image", "saved", "default")
	return cmd
}

func documentsDownloadCmd() *cobra.Command {
	var original bool
	var out string

	cmd := &cobra.Command{
		Use:   "download <id>",
		Short: "Download the signed (or original) PDF",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var blob *api.Blob
			if original {
				blob, err = a.client.DownloadOriginal(cmd.Context(), id)
			} else {
				blob, err = a.client.DownloadDocument(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return saveBlob(cmd, a, blob, out, fmt.Sprintf("document-%d.pdf", id))
		}),
	}

	cmd.Flags().BoolVar(&original, "original", false, "download the unsigned original")
	cmd.Flags().StringVarP(&out, "out", "O", "", "output file, - for stdout (default: server file name)")
	return cmd
}

func documentsPageCmd() *cobra.Command {
	var dpi int
	var out string

	cmd := &cobra.Command{
		Use:   "page <id> <page>",
		Short: "Export one rendered page as an image",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			page, err := parseID(args[1])
			if err != nil {
				return err
			}
			blob, err := a.client.DocumentPage(cmd.Context(), id, page, dpi)
			if err != nil {
				return err
			}
			return saveBlob(cmd, a, blob, out, fmt.Sprintf("document-%d-p%d.png", id, page))
		}),
	}

	cmd.Flags().IntVar(&dpi, "dpi", 0, "render resolution (default: backend default)")
	cmd.Flags().StringVarP(&out, "out", "O", "", "output file, - for stdout")
	return cmd
}

func documentsEmailCmd() *cobra.Command {
	var email model.DocumentEmail

	cmd := &cobra.Command{
		Use:   "email <id>",
		Short: "Send a document by email",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.EmailDocument(cmd.Context(), id, email); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Document #%d verstuurd naar %s", id, email.To))
			return nil
		}),
	}

	cmd.Flags().StringVar(&email.To, "to", "", "recipient address")
	cmd.Flags().StringVar(&email.Subject, "subject", "", "subject line")
	cmd.Flags().StringVar(&email.Message, "message", "", "message body")
	cmd.Flags().BoolVar(&email.SendSigned, "signed", true, "attach the signed version")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// saveBlob writes a download to out, falling back to the server's file name and then
// to fallback.
func saveBlob(cmd *cobra.Command, a *app, blob *api.Blob, out, fallback string) error {
	if out == "" {
		out = blob.FileName
	}
	if out == "" {
		out = fallback
	}
	if err := writeOutput(cmd, out, blob.Data); err != nil {
		return err
	}
	if out != "-" {
		a.out.Success(fmt.Sprintf("%s opgeslagen (%d bytes)", out, len(blob.Data)))
	}
	return nil
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

func signaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "Manage saved signatures",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved signatures",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				sigs, err := a.client.ListSignatures(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Print(sigs, func() cli.Table {
					t := cli.Table{Headers: []string{"ID", "Naam", "Standaard", "Aangemaakt"}}
					for _, s := range sigs {
						t.Add(strconv.Itoa(s.ID), s.Name, yesNo(s.IsDefault), s.CreatedAt.Format("2006-01-02"))
					}
					return t
				})
			}),
		},
		signaturesAddCmd(),
		&cobra.Command{
			Use:   "rename <id> <name>",
			Short: "Rename a saved signature",
			Args:  cobra.ExactArgs(2),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if _, err := a.client.RenameSignature(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Handtekening #%d hernoemd naar %q", id, args[1]))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "default <id>",
			Short: "Make a saved signature the default",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := a.client.SetDefaultSignature(cmd.Context(), id); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Handtekening #%d is nu de standaard", id))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a saved signature",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ok, err := a.confirm(cmd, fmt.Sprintf("Handtekening #%d verwijderen?", id))
				if err != nil || !ok {
					return err
				}
				if err := a.client.DeleteSignature(cmd.Context(), id); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Handtekening #%d verwijderd", id))
				return nil
			}),
		},
	)
	return cmd
}

func signaturesAddCmd() *cobra.Command {
	var name string
	var makeDefault bool

	cmd := &cobra.Command{
		Use:   "add <image>",
		Short: "Save a signature image",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			data, err := readFile(args[0])
			if err != nil {
				return err
			}
			png, _, err := signing.PrepareImage(data)
			if err != nil {
				return err
			}
			if name == "" {
				name = fileStem(args[0])
			}
			sig, err := a.client.CreateSignature(cmd.Context(), model.SavedSignature{
				Name:           name,
				SignatureImage: signing.DataURL(png),
				IsDefault:      makeDefault,
			})
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Handtekening #%d opgeslagen", sig.ID))
			return nil
		}),
	}

	cmd.Flags().StringVar(&name, "name", "", "signature name (default: file name)")
	cmd.Flags().BoolVar(&makeDefault, "default", false, "make this the default signature")
	return cmd
}
