package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/defistate/lbpmath-go/cmd/lbpsim/config"
	"github.com/defistate/lbpmath-go/examples/weightcurve"
	"github.com/holiman/uint256"
)

const (
	DefaultSteps = 10
)

// quote is one priced probe trade at a sampled block.
type quote struct {
	AmountIn string `json:"amount_in"`
	Spot     string `json:"spot,omitempty"`
	Out      string `json:"out,omitempty"`
	Error    string `json:"error,omitempty"`
}

// row is everything the walker evaluates at one block.
type row struct {
	Block      uint64  `json:"block"`
	SellWeight string  `json:"sell_weight"`
	BuyWeight  string  `json:"buy_weight"`
	Quotes     []quote `json:"quotes"`
}

func main() {
	// --- 1. FLAGS & LOGGING ---
	configPath := flag.String("config", "scenario.yaml", "Path to the scenario file.")
	steps := flag.Int("steps", DefaultSteps, "Number of sampling steps across the ramp.")
	asJSON := flag.Bool("json", false, "Emit one JSON document per sampled block instead of a table.")
	logLevel := flag.String("log-level", "info", "Diagnostic log level: debug, info, warn or error.")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		log.Fatalf("invalid -log-level %q: %v", *logLevel, err)
	}
	rootLogHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	rootLogger := slog.New(rootLogHandler)
	close := func() {
		os.Exit(1)
	}

	// --- 2. SCENARIO ---
	log.Printf("Loading scenario from: %s", *configPath)
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		rootLogger.Error("Failed to load scenario", "error", err)
		close()
	}

	curve, trades, err := buildScenario(cfg)
	if err != nil {
		rootLogger.Error("Failed to parse scenario balances", "error", err)
		close()
	}

	// --- 3. WALK THE RAMP ---
	blocks := sampleBlocks(curve.StartBlock, curve.EndBlock, *steps)
	rows := make([]row, 0, len(blocks))
	for _, block := range blocks {
		r, err := priceBlock(curve, trades, block, rootLogger)
		if err != nil {
			rootLogger.Error("Failed to interpolate weights", "block", block, "error", err)
			close()
		}
		rows = append(rows, r)
	}

	// --- 4. OUTPUT ---
	if *asJSON {
		err = writeJSON(os.Stdout, rows)
	} else {
		err = writeTable(os.Stdout, curve, trades, rows)
	}
	if err != nil {
		rootLogger.Error("Failed to write output", "error", err)
		close()
	}
}

// buildScenario converts the decimal strings of a validated scenario file
// into the curve and probe trades the walker prices.
func buildScenario(cfg *config.ScenarioConfig) (*weightcurve.Curve, []*uint256.Int, error) {
	sellReserve, err := parseBalance("pool.sell_reserve", cfg.Pool.SellReserve)
	if err != nil {
		return nil, nil, err
	}
	buyReserve, err := parseBalance("pool.buy_reserve", cfg.Pool.BuyReserve)
	if err != nil {
		return nil, nil, err
	}
	sellStart, err := parseBalance("ramp.sell_start_weight", cfg.Ramp.SellStartWeight)
	if err != nil {
		return nil, nil, err
	}
	sellEnd, err := parseBalance("ramp.sell_end_weight", cfg.Ramp.SellEndWeight)
	if err != nil {
		return nil, nil, err
	}
	buyStart, err := parseBalance("ramp.buy_start_weight", cfg.Ramp.BuyStartWeight)
	if err != nil {
		return nil, nil, err
	}
	buyEnd, err := parseBalance("ramp.buy_end_weight", cfg.Ramp.BuyEndWeight)
	if err != nil {
		return nil, nil, err
	}

	curve := &weightcurve.Curve{
		SellReserve: sellReserve,
		BuyReserve:  buyReserve,
		StartBlock:  cfg.Ramp.StartBlock,
		EndBlock:    cfg.Ramp.EndBlock,
		Sell:        weightcurve.Ramp{Start: sellStart, End: sellEnd},
		Buy:         weightcurve.Ramp{Start: buyStart, End: buyEnd},
	}

	trades := make([]*uint256.Int, len(cfg.Trades))
	for i, raw := range cfg.Trades {
		trades[i], err = parseBalance(fmt.Sprintf("trades[%d]", i), raw)
		if err != nil {
			return nil, nil, err
		}
	}
	return curve, trades, nil
}

// parseBalance decodes one decimal balance string from the scenario file.
func parseBalance(field, value string) (*uint256.Int, error) {
	n, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return n, nil
}

// sampleBlocks returns evenly spaced blocks covering [start, end], both
// endpoints included, with duplicates collapsed on short ramps.
func sampleBlocks(start, end uint64, steps int) []uint64 {
	duration := end - start
	if steps < 1 {
		steps = 1
	}
	if uint64(steps) > duration {
		steps = int(duration)
	}

	blocks := make([]uint64, 0, steps+1)
	for i := 0; i <= steps; i++ {
		block := start + duration*uint64(i)/uint64(steps)
		if n := len(blocks); n > 0 && blocks[n-1] == block {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// priceBlock evaluates the curve and every probe trade at one block.
// Interpolation failures abort the walk; per-trade pricing failures are
// recorded on the quote and logged.
func priceBlock(curve *weightcurve.Curve, trades []*uint256.Int, block uint64, logger *slog.Logger) (row, error) {
	sellWeight, buyWeight, err := curve.WeightsAt(block)
	if err != nil {
		return row{}, err
	}

	r := row{
		Block:      block,
		SellWeight: sellWeight.String(),
		BuyWeight:  buyWeight.String(),
		Quotes:     make([]quote, 0, len(trades)),
	}
	for _, amountIn := range trades {
		q := quote{AmountIn: amountIn.String()}

		if spot, err := curve.SpotAt(block, amountIn); err != nil {
			q.Error = err.Error()
			logger.Warn("Spot price failed", "block", block, "amount_in", q.AmountIn, "error", err)
		} else {
			q.Spot = spot.String()
		}

		if out, err := curve.QuoteAt(block, amountIn); err != nil {
			if q.Error == "" {
				q.Error = err.Error()
			}
			logger.Warn("Quote failed", "block", block, "amount_in", q.AmountIn, "error", err)
		} else {
			q.Out = out.String()
		}

		r.Quotes = append(r.Quotes, q)
	}
	return r, nil
}

// writeTable renders the walk as an aligned table, one line per sampled
// block and two columns per probe trade.
func writeTable(w io.Writer, curve *weightcurve.Curve, trades []*uint256.Int, rows []row) error {
	fmt.Fprintf(w, "Bootstrapping pool %s / %s, blocks %d-%d\n\n",
		curve.SellReserve, curve.BuyReserve, curve.StartBlock, curve.EndBlock)

	tw := tabwriter.NewWriter(w, 0, 0, 4, ' ', 0)

	headers := []string{"BLOCK", "SELL WEIGHT", "BUY WEIGHT"}
	for _, amountIn := range trades {
		headers = append(headers, "SPOT "+amountIn.String(), "OUT "+amountIn.String())
	}
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t")+"\t")
	fmt.Fprintln(tw, strings.Join(dashes, "\t")+"\t")

	for _, r := range rows {
		cells := []string{strconv.FormatUint(r.Block, 10), r.SellWeight, r.BuyWeight}
		for _, q := range r.Quotes {
			cells = append(cells, tableCell(q.Spot), tableCell(q.Out))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	return tw.Flush()
}

// tableCell substitutes a dash for quotes that failed to price.
func tableCell(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// writeJSON emits one JSON document per sampled block.
func writeJSON(w io.Writer, rows []row) error {
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}
