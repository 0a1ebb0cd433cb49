// Command predict runs the price prediction pipeline from the command line.
//
//	predict -category books -brand 4 -seller 4 -competition low -attr format=hardcover
//	predict -stdin < requests.jsonl
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"pricepredictor/internal/config"
	"pricepredictor/internal/model"
	"pricepredictor/internal/presenter"
	"pricepredictor/internal/pricing"
	"pricepredictor/internal/service"

	"github.com/gin-gonic/gin/binding"
)

// attrFlags collects repeated -attr name=value flags
type attrFlags model.Attributes

func (a attrFlags) String() string {
	parts := make([]string, 0, len(a))
	for k, v := range a {
		parts = append(parts, k+"="+v)
	}
	return strings.Join(parts, ",")
}

func (a attrFlags) Set(value string) error {
	name, v, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("attribute must be name=value, got %q", value)
	}
	if v = strings.TrimSpace(v); v != "" {
		a[strings.TrimSpace(name)] = v
	}
	return nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	category := fs.String("category", "", "product category (electronics, clothing, home, books, sports, automotive, beauty, toys)")
	brand := fs.Float64("brand", 3, "brand rating 0-5")
	seller := fs.Float64("seller", 3, "seller rating 0-5")
	competition := fs.String("competition", "medium", "market competition: low, medium or high")
	chartPath := fs.String("chart", "", "write the confidence chart SVG to this file")
	fromStdin := fs.Bool("stdin", false, "read one JSON request per line from stdin, write one JSON response per line")
	asJSON := fs.Bool("json", false, "print the full response as JSON")
	attrs := attrFlags{}
	fs.Var(attrs, "attr", "category attribute name=value (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	var remote service.RemoteEstimator
	if cfg.Predictor.Enabled {
		remote = service.NewOpenAIClient(&cfg.Predictor)
	}
	fallback := pricing.NewEstimator(cfg.App.DefaultConfidence, pricing.NewPriceFormatter(cfg.App.Currency, cfg.App.CurrencyLocale))
	cli := &predictCLI{
		predictor: service.NewPredictor(remote, fallback, nil, cfg.App),
		presenter: presenter.New(),
		out:       stdout,
	}

	if *fromStdin {
		return cli.lines(ctx, stdin, *chartPath)
	}

	req := model.PredictRequest{
		Category:     *category,
		BrandRating:  *brand,
		SellerRating: *seller,
		Competition:  *competition,
		Attributes:   model.Attributes(attrs),
	}
	if err := binding.Validator.ValidateStruct(&req); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}

	resp := cli.predict(ctx, req)
	if err := writeChart(*chartPath, cli.chart); err != nil {
		return err
	}
	if *asJSON {
		return json.NewEncoder(stdout).Encode(resp)
	}
	return printView(stdout, resp)
}

// predictCLI owns the current chart across predictions
type predictCLI struct {
	predictor *service.Predictor
	presenter *presenter.Presenter
	chart     *presenter.Chart
	out       io.Writer
}

func (c *predictCLI) predict(ctx context.Context, req model.PredictRequest) model.PredictResponse {
	p := c.predictor.Predict(ctx, req.Input())

	var view model.ResultView
	view, c.chart = c.presenter.Render(p.Result, c.chart)
	spec := c.chart.Spec()

	return model.PredictResponse{ID: p.ID, Result: p.Result, View: view, Chart: &spec, Took: p.Took}
}

// lines answers one JSON request per input line. Bad lines produce an
// {"error": ...} line and processing continues.
func (c *predictCLI) lines(ctx context.Context, stdin io.Reader, chartPath string) error {
	enc := json.NewEncoder(c.out)
	scanner := bufio.NewScanner(stdin)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req model.PredictRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			if err := enc.Encode(map[string]string{"error": "invalid JSON: " + err.Error()}); err != nil {
				return err
			}
			continue
		}
		if err := binding.Validator.ValidateStruct(&req); err != nil {
			if err := enc.Encode(map[string]string{"error": "invalid input: " + err.Error()}); err != nil {
				return err
			}
			continue
		}

		if err := enc.Encode(c.predict(ctx, req)); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return writeChart(chartPath, c.chart)
}

func printView(w io.Writer, resp model.PredictResponse) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Predicted price: %s\n", resp.View.PredictedPrice)
	if resp.View.AnomalyVisible {
		fmt.Fprintf(&b, "%s\n", resp.View.AnomalyText)
	}
	if resp.Result.Explanation != "" {
		fmt.Fprintf(&b, "Explanation: %s\n", resp.Result.Explanation)
	}
	if resp.Chart != nil {
		fmt.Fprintf(&b, "%s\n", resp.Chart.Title)
	}
	fmt.Fprintf(&b, "Source: %s\n", resp.Result.Source)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeChart(path string, chart *presenter.Chart) error {
	if path == "" || chart == nil {
		return nil
	}
	if err := os.WriteFile(path, []byte(chart.Spec().SVG), 0o644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}
	return nil
}
