package commands

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"auctionrelay/internal/browser"
	"auctionrelay/internal/models"
	"auctionrelay/internal/relay"
	"auctionrelay/internal/scraper"
	"auctionrelay/internal/validation"
)

var (
	followPagination bool
	maxPages         int
	showMessages     bool
)

func init() {
	listingCmd.Flags().BoolVar(&followPagination, "follow-pagination", false, "Follow the next-page link after the first page.")
	listingCmd.Flags().IntVar(&maxPages, "max-pages", 0, "Upper bound on pages visited when following pagination (at most 5).")
	detailCmd.Flags().BoolVar(&showMessages, "messages", false, "Print the chat messages the relay would send for this vehicle.")
	rootCmd.AddCommand(listingCmd, detailCmd)
}

func newScraper() *scraper.Scraper {
	launcher := browser.NewRodLauncher(browser.Config{
		Headless:          cfg.Browser.Headless,
		Bin:               cfg.Browser.ChromeBin,
		UserAgent:         cfg.Browser.UserAgent,
		NavigationTimeout: cfg.Scrape.NavTimeout(),
	})
	delays := scraper.DefaultDelays()
	delays.NavTimeout = cfg.Scrape.NavTimeout()
	delays.SelectorTimeout = cfg.Scrape.SelTimeout()

	pages := cfg.Scrape.MaxPages
	if maxPages > 0 {
		pages = maxPages
	}
	return scraper.New(launcher, scraper.Options{
		CookiePath:       cfg.Scrape.CookiesPath,
		FollowPagination: followPagination || cfg.Scrape.FollowPagination,
		MaxPages:         pages,
		Delays:           delays,
	})
}

var listingCmd = &cobra.Command{
	Use:   "listing [url]",
	Short: "Scrapes an IAAI search page. Defaults to the configured search URL.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := cfg.Scrape.SearchURL
		if len(args) == 1 {
			u, err := validation.ValidateAuctionURL(args[0])
			if err != nil {
				return err
			}
			target = u.String()
		}

		res := newScraper().RunListingScrape(cmd.Context(), target)
		if jsonOutput {
			if err := printJSON(res); err != nil {
				return err
			}
		} else {
			renderListing(res)
		}
		if !res.Success {
			return errors.New(res.Message)
		}
		return nil
	},
}

var detailCmd = &cobra.Command{
	Use:   "detail <url>",
	Short: "Scrapes a vehicle page on IAAI, IAAI Canada or Copart.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := validation.ValidateAuctionURL(args[0])
		if err != nil {
			return err
		}

		res, err := newScraper().RunDetailScrape(cmd.Context(), u.String())
		if err != nil {
			return err
		}
		switch {
		case jsonOutput:
			if err := printJSON(res); err != nil {
				return err
			}
		case showMessages && res.Success:
			renderMessages(relay.VehicleMessages(res.Data))
		default:
			renderDetail(res)
		}
		if !res.Success {
			return errors.New(res.Message)
		}
		return nil
	},
}

func renderListing(res *models.ListingResult) {
	t := newTable()
	t.SetTitle(res.Message)
	t.AppendHeader(table.Row{"#", "Title", "Price", "Link"})
	for i, item := range res.Data {
		t.AppendRow(table.Row{
			i + 1,
			models.Deref(item.Title),
			models.Deref(item.Price),
			models.Deref(item.Link),
		})
	}
	t.AppendFooter(table.Row{"", "Total", len(res.Data), fmt.Sprintf("%d page(s)", res.PagesScraped)})
	if res.Details != "" {
		t.SetCaption(res.Details)
	}
	t.Render()
}

func renderDetail(res *models.DetailResult) {
	t := newTable()
	t.SetTitle(res.Message)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})
	if res.Data != nil {
		for _, field := range res.Data.Fields() {
			value, ok := res.Data.Get(field)
			if !ok {
				value = "-"
			}
			t.AppendRow(table.Row{field, value})
		}
		t.AppendSeparator()
		for _, img := range res.Data.Images {
			t.AppendRow(table.Row{models.FieldImages, img})
		}
	}
	if res.PageStructure != nil {
		t.SetCaption(fmt.Sprintf("page title %q, %d h1, %d li, %d dt",
			res.PageStructure.Title, res.PageStructure.H1Count, res.PageStructure.LICount, res.PageStructure.DTCount))
	} else if res.Details != "" {
		t.SetCaption(res.Details)
	}
	t.Render()
}

func renderMessages(messages []relay.Message) {
	t := newTable()
	t.AppendHeader(table.Row{"#", "Type", "Content"})
	for i, m := range messages {
		content := m.Body
		if m.Type == relay.MessageImage {
			content = m.Href
		}
		t.AppendRow(table.Row{i + 1, m.Type, content})
	}
	t.Render()
}
