package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/chainscope/tokenscan/internal/aggregator"
	"github.com/chainscope/tokenscan/internal/providers"
	"github.com/chainscope/tokenscan/internal/refresher"
	"github.com/chainscope/tokenscan/internal/scanner"
	"github.com/chainscope/tokenscan/internal/storage/postgres"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tokenscan",
	Short: "Token risk scanner",
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "2006-01-02 15:04:05",
	}).Level(zerolog.InfoLevel)

	configPath := rootCmd.PersistentFlags().StringP("config", "c", "tokenscan.yml", "path to YAML config file")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan one token and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			address, _ := cmd.Flags().GetString("address")
			chain, _ := cmd.Flags().GetString("chain")
			force, _ := cmd.Flags().GetBool("force-refresh")
			return scanOne(*configPath, address, chain, force)
		},
	}
	scanCmd.Flags().String("address", "", "token contract address")
	scanCmd.Flags().String("chain", "", "chain id or alias")
	scanCmd.Flags().Bool("force-refresh", false, "bypass the result cache")
	if err := scanCmd.MarkFlagRequired("address"); err != nil {
		log.Panic().Err(err).Msg("address command line arg is required")
		return
	}
	if err := scanCmd.MarkFlagRequired("chain"); err != nil {
		log.Panic().Err(err).Msg("chain command line arg is required")
		return
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the background refresher",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(*configPath)
		},
	}

	rootCmd.AddCommand(scanCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Panic().Err(err).Msg("command line execute")
	}
}

func setup(configPath string) (Config, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return cfg, err
	}

	if cfg.MaxCPU > 0 {
		runtime.GOMAXPROCS(cfg.MaxCPU)
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = zerolog.LevelInfoValue
	}
	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return cfg, err
	}
	zerolog.SetGlobalLevel(logLevel)
	zerolog.CallerMarshalFunc = func(pc uintptr, file string, line int) string {
		short := file
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				short = file[i+1:]
				break
			}
		}
		file = short
		return file + ":" + strconv.Itoa(line)
	}
	log.Logger = log.Logger.With().Caller().Logger()

	return cfg, nil
}

func build(ctx context.Context, cfg Config) (*scanner.Guard, postgres.Storage, *scanner.Cache, error) {
	pg, err := postgres.Create(ctx, cfg.Database)
	if err != nil {
		return nil, postgres.Storage{}, nil, err
	}

	var cache *scanner.Cache
	if cfg.Cache != nil {
		cache = scanner.NewCache(*cfg.Cache)
	}

	httpTimeout := 10 * time.Second
	if cfg.Scanner.HTTPTimeout > 0 {
		httpTimeout = time.Duration(cfg.Scanner.HTTPTimeout) * time.Second
	}
	client := providers.NewClient(httpTimeout)

	fetcher := aggregator.New(aggregator.Config{
		SecurityPrimary:  providers.NewGoPlus(client, cfg.DataSource(sourceGoPlus)),
		SecurityFallback: providers.NewHoneypot(client, cfg.DataSource(sourceHoneypot)),
		Metadata:         providers.NewCoinGecko(client, cfg.DataSource(sourceCoinGecko)),
		Price:            providers.NewDexScreener(client, cfg.DataSource(sourceDexScreener)),
		Holders:          providers.NewCovalent(client, cfg.DataSource(sourceCovalent)),
		Pools:            providers.NewGeckoTerminal(client, cfg.DataSource(sourceGeckoTerminal)),
		TVL:              providers.NewDefiLlama(client, cfg.DataSource(sourceDefiLlama)),
		Twitter:          providers.NewTwitterCounter(client, cfg.TwitterMirrors),
		Discord:          providers.NewDiscordCounter(client, cfg.DataSource(sourceDiscord)),
		Telegram:         providers.NewTelegramCounter(client, cfg.DataSource(sourceTelegram)),
		GitHub:           providers.NewGitHub(client, cfg.DataSource(sourceGitHub)),
	})

	scanTimeout := 30 * time.Second
	if cfg.Scanner.ScanTimeout > 0 {
		scanTimeout = time.Duration(cfg.Scanner.ScanTimeout) * time.Second
	}

	return scanner.NewGuard(fetcher, pg, cache, scanTimeout), pg, cache, nil
}

func scanOne(configPath, address, chain string, force bool) error {
	cfg, err := setup(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard, pg, cache, err := build(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAll(pg, cache)

	response := guard.Scan(ctx, scanner.Request{
		TokenAddress: address,
		ChainID:      chain,
		ForceRefresh: force,
	})

	raw, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))

	if !response.Success {
		os.Exit(1)
	}
	return nil
}

func run(configPath string) error {
	cfg, err := setup(configPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	guard, pg, cache, err := build(ctx, cfg)
	if err != nil {
		return err
	}

	worker := refresher.New(cfg.Refresher, pg.Tokens, guard)
	worker.Start(ctx)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGTERM, syscall.SIGINT)
	<-signals

	cancel()

	if err := worker.Close(); err != nil {
		log.Err(err).Msg("closing refresher")
	}
	closeAll(pg, cache)

	log.Info().Msg("stopped")
	return nil
}

func closeAll(pg postgres.Storage, cache *scanner.Cache) {
	if cache != nil {
		if err := cache.Close(); err != nil {
			log.Err(err).Msg("closing cache")
		}
	}
	if err := pg.Close(); err != nil {
		log.Err(err).Msg("closing database")
	}
}
