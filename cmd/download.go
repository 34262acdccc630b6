package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brogergvhs/crunchymanga/internal/config"
	"github.com/brogergvhs/crunchymanga/internal/downloader"
	"github.com/brogergvhs/crunchymanga/internal/export"
	"github.com/brogergvhs/crunchymanga/internal/manga"
	"github.com/brogergvhs/crunchymanga/internal/providers/chromium"
	"github.com/brogergvhs/crunchymanga/internal/providers/crunchyroll"
	"github.com/brogergvhs/crunchymanga/internal/ui"
	"github.com/brogergvhs/crunchymanga/internal/util"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// questions
	flagUsername string
	flagPassword string
	flagURL      string
	flagBrowser  string
	flagFormat   string
	flagPageSize string
	flagDivide   int
	flagYes      bool

	// selection
	flagRange string
	flagList  string

	// runtime
	flagOutput        string
	flagHeadless      bool
	flagKeepImages    bool
	flagBrowserBin    string
	flagOnMissingPage string
	flagPDFBatching   string
	flagTransliterate bool
	flagUserAgent     string
)

func addDownloadFlags(c *cobra.Command) {
	// questions
	c.Flags().StringVar(&flagUsername, "username", "", "Crunchyroll username")
	c.Flags().StringVar(&flagPassword, "password", "", "Crunchyroll password (or CRUNCHYMANGA_PASSWORD)")
	c.Flags().StringVar(&flagURL, "url", "", "series URL, e.g. https://www.crunchyroll.com/comics/manga/TITLE/volumes")
	c.Flags().StringVar(&flagBrowser, "browser", "", "browser to drive: Chrome, Edge or Opera")
	c.Flags().StringVar(&flagFormat, "format", "", "output: images, pdf, epub or both")
	c.Flags().StringVar(&flagPageSize, "page-size", "", "PDF page size (A3, A4, A5, LETTER, LEGAL, TABLOID)")
	c.Flags().IntVar(&flagDivide, "divide", 0, "chapters per exported file, 0 for a single file")
	c.Flags().BoolVarP(&flagYes, "yes", "y", false, "skip the confirmation question")

	// selection
	c.Flags().StringVar(&flagRange, "range", "", "download range of chapters by index (e.g. 5-12)")
	c.Flags().StringVar(&flagList, "list", "", "download specific chapter indices (e.g. 1,3,5)")

	// runtime
	c.Flags().StringVar(&flagOutput, "output", "", "output folder")
	c.Flags().BoolVar(&flagHeadless, "headless", false, "run the browser without a window")
	c.Flags().BoolVar(&flagKeepImages, "keep-images", false, "keep page images after exporting")
	c.Flags().StringVar(&flagBrowserBin, "browser-bin", "", "path to the browser executable")
	c.Flags().StringVar(&flagOnMissingPage, "on-missing-page", "", "skip or abort when a page image never loads")
	c.Flags().StringVar(&flagPDFBatching, "pdf-batching", "", "aligned or legacy PDF chapter grouping")
	c.Flags().BoolVar(&flagTransliterate, "transliterate", false, "use ASCII only file names")
	c.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
}

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Log in, save every page of a series and export it. Uses the defaults from the config, overwritten by CLI flags",
		RunE:  runDownload,
	}

	addDownloadFlags(downloadCmd)
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, _ []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:  flagIgnoreConfig,
		Debug:         flagDebug,
		Output:        flagOutput,
		Headless:      flagHeadless,
		KeepImages:    flagKeepImages,
		BrowserBin:    flagBrowserBin,
		OnMissingPage: flagOnMissingPage,
		PDFBatching:   flagPDFBatching,
		Transliterate: flagTransliterate,
		UserAgent:     flagUserAgent,
	})
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	defer logSvc.Sync()

	fmt.Printf("Config file: %s\n", usedPath)
	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	prefs, err := config.OpenPreferences(config.PreferencesPath())
	if err != nil {
		logSvc.Warnf("Previous answers unavailable: %v", err)
		prefs = nil
	}

	answers := ui.Answers{
		Username: flagUsername,
		Password: flagPassword,
		URL:      flagURL,
		Browser:  flagBrowser,
		Format:   flagFormat,
		PageSize: flagPageSize,
		Yes:      flagYes,
	}
	if answers.Password == "" {
		// a .env next to the working directory may carry the password
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			logSvc.Warnf("Ignoring .env: %v", err)
		}
		answers.Password = os.Getenv("CRUNCHYMANGA_PASSWORD")
	}
	if cmd.Flags().Changed("divide") {
		answers.Divide = strconv.Itoa(flagDivide)
	}

	var store config.Preferences
	if prefs != nil {
		store = prefs
	}
	answers, err = ui.Ask(store, ui.Choices{
		Browsers:  chromium.Browsers,
		Formats:   export.FormatChoices,
		PageSizes: export.PageSizes,
		Divides:   export.DivideChoices,
		NeedsPageSize: func(f string) bool {
			format, err := export.ParseFormat(f)
			return err == nil && export.WantsPDF(format)
		},
	}, answers)
	if err != nil {
		return err
	}

	format, err := export.ParseFormat(answers.Format)
	if err != nil {
		return err
	}
	divide, err := export.ParseDivide(answers.Divide)
	if err != nil {
		return err
	}
	if export.WantsPDF(format) {
		if answers.PageSize == "" {
			answers.PageSize = "LETTER"
		}
		if !export.ValidPageSize(answers.PageSize) {
			return fmt.Errorf("unknown PDF page size %q", answers.PageSize)
		}
	}

	if prefs != nil {
		remembered := map[string]string{
			config.PrefUsername: answers.Username,
			config.PrefURL:      answers.URL,
			config.PrefBrowser:  answers.Browser,
			config.PrefFormat:   export.FormatLabel(format),
			config.PrefPageSize: answers.PageSize,
			config.PrefDivide:   export.DivideLabel(divide),
			config.PrefPassword: "",
		}
		if cfg.RememberPassword {
			remembered[config.PrefPassword] = answers.Password
		}
		if err := prefs.Remember(remembered); err != nil {
			logSvc.Warnf("Could not remember answers: %v", err)
		}
	}

	return download(cmd.Context(), cfg, logSvc, answers, format, divide)
}

func download(ctx context.Context, cfg *config.Config, logSvc *ui.Logger, a ui.Answers, format string, divide int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	driver, err := chromium.Launch(ctx, chromium.Options{
		Browser:   a.Browser,
		Bin:       cfg.BrowserBin,
		Headless:  cfg.Headless,
		UserAgent: cfg.UserAgent,
		Log:       logSvc.Zap(),
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := driver.Close(); err != nil {
			logSvc.Debugf("browser close: %v", err)
		}
	}()

	stop := util.SetupInterruptHandler(driver, cfg.Output)
	defer stop()

	siteOpts := crunchyroll.DefaultOptions()
	siteOpts.PageLoadTimeout = cfg.PageLoadTimeout
	site := crunchyroll.New(driver, logSvc.Zap(), siteOpts)

	logSvc.Infof("Logging in as %s...", a.Username)
	if err := site.Login(ctx, a.Username, a.Password); err != nil {
		return err
	}

	logSvc.Infof("Getting manga data...")
	if err := site.OpenSeries(ctx, a.URL); err != nil {
		return err
	}

	pub := &manga.Publication{Divide: divide}
	if pub.Info, err = site.Info(ctx); err != nil {
		return err
	}

	all, err := site.Chapters(ctx)
	if err != nil {
		return err
	}
	logSvc.Infof("This manga has %d chapters.", len(all))

	pub.Chapters = manga.Filter(all, flagRange, flagList)
	if len(pub.Chapters) == 0 {
		return fmt.Errorf("no chapters selected")
	}
	if len(pub.Chapters) != len(all) {
		logSvc.Infof("Selected %d chapters.", len(pub.Chapters))
	}

	if pub.CoverURL, err = site.CoverURL(ctx); err != nil {
		logSvc.Warnf("No cover image: %v", err)
	}

	engineOpts := downloader.DefaultOptions(cfg.Output)
	engineOpts.PageLoadTimeout = cfg.PageLoadTimeout
	engineOpts.SlotTimeout = cfg.SlotTimeout
	engineOpts.SettleDelay = cfg.SettleDelay
	engineOpts.OnMissingPage = cfg.OnMissingPage

	stats := &ui.Stats{}
	pm := ui.NewProgressManager(os.Stdout)
	engine := downloader.New(driver, logSvc, pm, stats, engineOpts)

	if err := engine.OpenChapter(ctx, pub.Chapters[0].URL); err != nil {
		return err
	}
	if pub.Title, err = site.ReaderTitle(ctx); err != nil {
		return err
	}

	name := manga.SanitizeTitle(pub.Title, cfg.Transliterate)
	dir := manga.Dir(cfg.Output, name)
	logSvc.Infof("Output directory: %q", dir)
	if err := util.ResetDir(dir); err != nil {
		return err
	}

	if pub.CoverURL != "" {
		cookie, err := driver.CookieHeader(ctx, pub.CoverURL)
		if err != nil {
			logSvc.Debugf("no session cookies for the cover: %v", err)
		}
		if err := saveCover(ctx, cfg, logSvc, pm, stats, pub, dir, cookie); err != nil {
			logSvc.Warnf("Cover image skipped: %v", err)
		}
	}

	err = engine.WithDir(dir).Run(ctx, pub)
	pm.Close()
	if err != nil {
		return err
	}

	if err := manga.SaveManifest(dir, pub); err != nil {
		logSvc.Warnf("Manifest not saved: %v", err)
	}

	if format == export.FormatImages {
		stats.Print(time.Since(start))
		fmt.Println("\nAll done! Bye!")
		return nil
	}

	x := export.New(logSvc, stats, export.Options{
		Dir:      cfg.Output,
		Name:     name,
		Format:   format,
		PageSize: a.PageSize,
		Batching: cfg.PDFBatching,
	})
	if _, err := x.Export(pub); err != nil {
		return err
	}

	if !cfg.KeepImages {
		if err := util.CleanupFolder(dir); err != nil {
			logSvc.Warnf("Cleanup of %s incomplete: %v", dir, err)
		}
	}

	stats.Print(time.Since(start))
	fmt.Println("\nAll done! Bye!")
	return nil
}

func saveCover(ctx context.Context, cfg *config.Config, logSvc *ui.Logger, progress ui.Progress, stats *ui.Stats, pub *manga.Publication, dir, cookie string) error {
	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   util.PickUserAgent(cfg.UserAgent),
		Cookie:      cookie,
		DebugLogger: logSvc,
	})
	if err != nil {
		return err
	}

	logSvc.Infof("Cover image: %s", pub.CoverURL)
	path := filepath.Join(dir, manga.CoverFile)
	tracker := progress.Register("cover")
	tracker.SetTotal(1)
	defer tracker.MarkDone()

	n, err := crunchyroll.DownloadCover(ctx, client, pub.CoverURL, path, func(done int64) {
		tracker.Update(0, done)
	})
	if err != nil {
		return err
	}
	tracker.Update(1, n)

	pub.CoverPath = path
	stats.TotalBytes.Add(n)
	return nil
}
