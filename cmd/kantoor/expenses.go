package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/kantoor/internal/bank"
	"github.com/Veraticus/kantoor/internal/cli"
	"github.com/Veraticus/kantoor/internal/common"
	"github.com/Veraticus/kantoor/internal/config"
	"github.com/Veraticus/kantoor/internal/model"
	"github.com/Veraticus/kantoor/internal/money"
	"github.com/Veraticus/kantoor/internal/service"
	"github.com/Veraticus/kantoor/internal/sheets"
)

func expensesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "expenses",
		Aliases: []string{"uitgaven"},
		Short:   "Manage expenses, categories and financial summaries",
	}

	cmd.AddCommand(
		expensesListCmd(),
		expensesGetCmd(),
		expenseSaveCmd(false),
		expenseSaveCmd(true),
		expensesDeleteCmd(),
		categoriesCmd(),
		expensesSummaryCmd(),
		revenueCmd(),
		importOFXCmd(),
		importPlaidCmd(),
		exportSheetsCmd(),
	)
	return cmd
}

func expenseTable(expenses ...model.Expense) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"ID", "Datum", "Omschrijving", "Leverancier", "Categorie", "Bedrag", "BTW", "Referentie"}}
		total := decimal.Zero
		for _, e := range expenses {
			t.Add(
				strconv.Itoa(e.ID),
				e.Date,
				e.Description,
				dash(e.Supplier),
				dash(e.CategoryName),
				money.FormatEuro(e.Amount),
				money.FormatEuro(e.BTWAmount),
				dash(e.Reference),
			)
			total = total.Add(e.Amount)
		}
		if len(expenses) > 1 {
			t.Add("", "", cli.BoldStyle.Render("Totaal"), "", "", money.FormatEuro(total), "", "")
		}
		return t
	}
}

func expensesListCmd() *cobra.Command {
	var filter model.ExpenseFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			page, err := a.client.ListExpenses(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if err := a.out.Print(page, expenseTable(page.Results...)); err != nil {
				return err
			}
			a.out.Message(cli.SubtleStyle.Render(fmt.Sprintf("%d van %d uitgaven", len(page.Results), page.Count)))
			return nil
		}),
	}

	cmd.Flags().StringVar(&filter.From, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&filter.To, "to", "", "last date, YYYY-MM-DD")
	cmd.Flags().IntVar(&filter.Category, "category", 0, "category id")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	return cmd
}

func expensesGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one expense",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			e, err := a.client.GetExpense(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.out.Print(e, expenseTable(*e))
		}),
	}
}

// expenseSaveCmd builds "add" or "update <id>". Amounts accept Dutch notation.
func expenseSaveCmd(update bool) *cobra.Command {
	var (
		expense    model.Expense
		amount     string
		btw        string
		categoryID int
	)

	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Book an expense",
		Example: `  kantoor expenses add --description "Diesel" --amount "1.234,56" --btw 214,27 --category 2`,
		Args:    cobra.NoArgs,
	}
	if update {
		cmd.Use, cmd.Short, cmd.Args, cmd.Example = "update <id>", "Change an expense", cobra.ExactArgs(1), ""
	}

	cmd.RunE = withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		f := cmd.Flags()
		target := expense

		if update {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			stored, err := a.client.GetExpense(ctx, id)
			if err != nil {
				return err
			}
			target = *stored
			if f.Changed("date") {
				target.Date = expense.Date
			}
			if f.Changed("description") {
				target.Description = expense.Description
			}
			if f.Changed("supplier") {
				target.Supplier = expense.Supplier
			}
			if f.Changed("reference") {
				target.Reference = expense.Reference
			}
		} else if target.Date == "" {
			target.Date = now().Format("2006-01-02")
		}

		if f.Changed("amount") || !update {
			d, err := money.Parse(amount)
			if err != nil {
				return common.NewValidationError("amount", err.Error())
			}
			target.Amount = d
		}
		if f.Changed("btw") {
			d, err := money.Parse(btw)
			if err != nil {
				return common.NewValidationError("btw", err.Error())
			}
			target.BTWAmount = d
		}
		if f.Changed("category") {
			target.Category = &categoryID
			if categoryID == 0 {
				target.Category = nil
			}
		}

		var saved *model.Expense
		var err error
		if update {
			saved, err = a.client.UpdateExpense(ctx, target)
		} else {
			saved, err = a.client.CreateExpense(ctx, target)
		}
		if err != nil {
			return err
		}
		a.out.Success(fmt.Sprintf("Uitgave #%d opgeslagen", saved.ID))
		return a.out.Print(saved, expenseTable(*saved))
	})

	flags := cmd.Flags()
	flags.StringVar(&expense.Date, "date", "", "date as YYYY-MM-DD (default: today)")
	flags.StringVar(&expense.Description, "description", "", "description")
	flags.StringVar(&expense.Supplier, "supplier", "", "supplier")
	flags.StringVar(&expense.Reference, "reference", "", "invoice or bank reference")
	flags.StringVar(&amount, "amount", "", "amount including BTW, e.g. 1.234,56")
	flags.StringVar(&btw, "btw", "0", "BTW part of the amount")
	flags.IntVar(&categoryID, "category", 0, "category id")
	if !update {
		_ = cmd.MarkFlagRequired("description")
		_ = cmd.MarkFlagRequired("amount")
	}
	return cmd
}

func expensesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := a.confirm(cmd, fmt.Sprintf("Uitgave #%d verwijderen?", id))
			if err != nil || !ok {
				return err
			}
			if err := a.client.DeleteExpense(cmd.Context(), id); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Uitgave #%d verwijderd", id))
			return nil
		}),
	}
}

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"category"},
		Short:   "Manage expense categories",
	}

	var category model.ExpenseCategory
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			category.Name = args[0]
			created, err := a.client.CreateExpenseCategory(cmd.Context(), category)
			if err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Categorie #%d %q aangemaakt", created.ID, created.Name))
			return nil
		}),
	}
	create.Flags().StringVar(&category.Description, "description", "", "description")
	create.Flags().StringVar(&category.Color, "color", "", "display color, e.g. #3B82F6")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List categories",
			Args:  cobra.NoArgs,
			RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
				categories, err := a.client.ListExpenseCategories(cmd.Context())
				if err != nil {
					return err
				}
				return a.out.Print(categories, func() cli.Table {
					t := cli.Table{Headers: []string{"ID", "Naam", "Omschrijving", "Kleur"}}
					for _, c := range categories {
						t.Add(strconv.Itoa(c.ID), c.Name, dash(c.Description), dash(c.Color))
					}
					return t
				})
			}),
		},
		create,
		&cobra.Command{
			Use:   "delete <id>",
			Short: "Delete a category",
			Args:  cobra.ExactArgs(1),
			RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				ok, err := a.confirm(cmd, fmt.Sprintf("Categorie #%d verwijderen?", id))
				if err != nil || !ok {
					return err
				}
				if err := a.client.DeleteExpenseCategory(cmd.Context(), id); err != nil {
					return err
				}
				a.out.Success(fmt.Sprintf("Categorie #%d verwijderd", id))
				return nil
			}),
		},
	)
	return cmd
}

func expensesSummaryCmd() *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total expenses per category for a year",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if year == 0 {
				year = now().Year()
			}
			summary, err := a.client.ExpenseSummary(cmd.Context(), year)
			if err != nil {
				return err
			}
			return a.out.Print(summary, summaryTable(*summary))
		}),
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default: this year)")
	return cmd
}

func summaryTable(summary model.ExpenseSummary) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"Categorie", "Bedrag", "Aandeel"}}
		names := make([]string, 0, len(summary.ByCategory))
		for name := range summary.ByCategory {
			names = append(names, name)
		}
		// Largest first.
		sort.SliceStable(names, func(i, j int) bool {
			return summary.ByCategory[names[i]].GreaterThan(summary.ByCategory[names[j]])
		})
		for _, name := range names {
			amount := summary.ByCategory[name]
			share := "-"
			if summary.Total.IsPositive() {
				share = amount.Div(summary.Total).Mul(decimal.NewFromInt(100)).StringFixed(1) + "%"
			}
			t.Add(name, money.FormatEuro(amount), share)
		}
		t.Add(cli.BoldStyle.Render("Totaal"), money.FormatEuro(summary.Total), fmt.Sprintf("%d uitgaven", summary.Count))
		t.Add("BTW", money.FormatEuro(summary.TotalBTW), "")
		return t
	}
}

func revenueCmd() *cobra.Command {
	var year int
	var period string

	cmd := &cobra.Command{
		Use:   "revenue",
		Short: "Revenue, expenses and profit per period",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			if year == 0 {
				year = now().Year()
			}
			points, err := a.client.Revenue(cmd.Context(), model.PeriodType(period), year)
			if err != nil {
				return err
			}
			return a.out.Print(points, revenueTable(points))
		}),
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default: this year)")
	cmd.Flags().StringVar(&period, "period", string(model.PeriodMonth), "week, month, quarter or year")
	return cmd
}

func revenueTable(points []model.RevenuePoint) func() cli.Table {
	return func() cli.Table {
		t := cli.Table{Headers: []string{"Periode", "Omzet", "Kosten", "Winst"}}
		var revenue, expenses, profit decimal.Decimal
		for _, p := range points {
			profitText := money.FormatEuro(p.Profit)
			if p.Profit.IsNegative() {
				profitText = cli.ErrorStyle.Render(profitText)
			}
			t.Add(p.Label, money.FormatEuro(p.Revenue), money.FormatEuro(p.Expenses), profitText)
			revenue, expenses, profit = revenue.Add(p.Revenue), expenses.Add(p.Expenses), profit.Add(p.Profit)
		}
		t.Add(cli.BoldStyle.Render("Totaal"), money.FormatEuro(revenue), money.FormatEuro(expenses), money.FormatEuro(profit))
		return t
	}
}

// bankImportFlags are shared by the bank import commands.
type bankImportFlags struct {
	category int
	from     string
	to       string
	dryRun   bool
}

func (f *bankImportFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.category, "category", 0, "category for every imported expense")
	cmd.Flags().StringVar(&f.from, "from", "", "first transaction date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last transaction date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "show the drafts without booking them")
}

func (f bankImportFlags) period(defaultDays int) (service.DateRange, error) {
	end := now()
	if f.to != "" {
		t, err := time.Parse("2006-01-02", f.to)
		if err != nil {
			return service.DateRange{}, common.NewValidationError("to", fmt.Sprintf("ongeldige datum %q", f.to))
		}
		end = t
	}
	start := end.AddDate(0, 0, -defaultDays)
	if f.from != "" {
		t, err := time.Parse("2006-01-02", f.from)
		if err != nil {
			return service.DateRange{}, common.NewValidationError("from", fmt.Sprintf("ongeldige datum %q", f.from))
		}
		start = t
	}
	if start.After(end) {
		return service.DateRange{}, common.NewValidationError("from", "ligt na --to")
	}
	return service.DateRange{Start: start, End: end}, nil
}

// bookTransactions turns bank debits into expenses. Transactions whose id already
// appears as a reference on an expense in the period are skipped.
func bookTransactions(cmd *cobra.Command, a *app, src service.TransactionSource, flags bankImportFlags, period service.DateRange, source string) error {
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), source+" import", "run the same command again; booked transactions are skipped")
	defer handler.Stop()

	txns, err := src.GetTransactions(ctx, period.Start, period.End)
	if err != nil {
		return err
	}

	booked, err := bookedReferences(ctx, a, period)
	if err != nil {
		return err
	}

	opts := bank.DraftOptions{}
	if flags.category > 0 {
		opts.Category = &flags.category
	}
	drafts := make([]model.Expense, 0, len(txns))
	for _, d := range bank.Drafts(txns, opts) {
		if !booked[d.Reference] {
			drafts = append(drafts, d)
		}
	}

	if len(drafts) == 0 {
		a.out.Message(cli.FormatInfo(fmt.Sprintf("Geen nieuwe afschrijvingen in %d transacties", len(txns))))
		return nil
	}
	if err := a.out.Print(drafts, expenseTable(drafts...)); err != nil {
		return err
	}
	if flags.dryRun {
		return nil
	}

	ok, err := a.confirm(cmd, fmt.Sprintf("%d uitgave(n) boeken?", len(drafts)))
	if err != nil || !ok {
		return err
	}

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(drafts), "Boeken")
	count, err := bank.Book(ctx, a.client, drafts, progress.Step)
	progress.Finish()
	if err != nil {
		return fmt.Errorf("%d van %d geboekt: %w", count, len(drafts), err)
	}
	a.out.Success(fmt.Sprintf("%d uitgave(n) geboekt uit %s", count, source))
	return nil
}

func bookedReferences(ctx context.Context, a *app, period service.DateRange) (map[string]bool, error) {
	booked := make(map[string]bool)
	filter := model.ExpenseFilter{
		From: period.Start.Format("2006-01-02"),
		To:   period.End.Format("2006-01-02"),
		Page: 1,
	}
	for {
		page, err := a.client.ListExpenses(ctx, filter)
		if err != nil {
			return nil, err
		}
		for _, e := range page.Results {
			if e.Reference != "" {
				booked[e.Reference] = true
			}
		}
		if !page.HasNext() {
			return booked, nil
		}
		filter.Page++
	}
}

func importOFXCmd() *cobra.Command {
	var flags bankImportFlags

	cmd := &cobra.Command{
		Use:   "import-ofx <file.ofx>",
		Short: "Book the debits of an OFX/QFX bank statement as expenses",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			period, err := flags.period(3650)
			if err != nil {
				return err
			}
			src := bank.OFXSource{Path: config.ExpandPath(args[0])}
			return bookTransactions(cmd, a, src, flags, period, "OFX")
		}),
	}

	flags.register(cmd)
	return cmd
}

func importPlaidCmd() *cobra.Command {
	var flags bankImportFlags

	cmd := &cobra.Command{
		Use:   "import-plaid",
		Short: "Book recent debits from the linked bank account as expenses",
		Long: `Book recent debits from the bank account linked with "kantoor auth bank" as
expenses. Without --from the last 30 days are read.`,
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			period, err := flags.period(30)
			if err != nil {
				return err
			}
			src, err := bank.NewPlaid(config.LoadPlaidConfig())
			if err != nil {
				return err
			}
			return bookTransactions(cmd, a, src, flags, period, "Plaid")
		}),
	}

	flags.register(cmd)
	return cmd
}

func exportSheetsCmd() *cobra.Command {
	var year int
	var period string

	cmd := &cobra.Command{
		Use:   "export-sheets",
		Short: "Export the expense summary and revenue series to Google Sheets",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			ctx := cmd.Context()
			if year == 0 {
				year = now().Year()
			}
			p := model.PeriodType(period)
			if !p.Valid() {
				return common.NewValidationError("period", fmt.Sprintf("onbekende periode %q", period))
			}

			sheetsCfg, err := config.LoadSheetsConfig()
			if err != nil {
				return err
			}

			summary, err := a.client.ExpenseSummary(ctx, year)
			if err != nil {
				return err
			}
			points, err := a.client.Revenue(ctx, p, year)
			if err != nil {
				return err
			}

			writer, err := sheets.NewWriter(ctx, *sheetsCfg, common.Component("sheets"))
			if err != nil {
				return err
			}
			if err := writer.Write(ctx, service.FinancialReport{
				Summary: *summary,
				Period:  p,
				Revenue: points,
				Year:    year,
			}); err != nil {
				return err
			}
			a.out.Success(fmt.Sprintf("Overzicht %d geëxporteerd naar %q", year, sheetsCfg.SpreadsheetName))
			return nil
		}),
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default: this year)")
	cmd.Flags().StringVar(&period, "period", string(model.PeriodMonth), "revenue period: week, month, quarter or year")
	return cmd
}
