// Command tripchat is the interactive driver for the links-only
// trip-planning graph: it loads config, wires every collaborator (model,
// tools, geocoder, memory, fault injector, telemetry, metrics), registers
// the node graph, and runs a stdin/stdout turn loop that resumes a run
// whenever a node stops to ask the user a clarifying question.
//
// Grounded on the teacher's examples/human_in_the_loop/main.go: a bufio
// stdin reader, engine.Run returning a state paused mid-graph, and a
// load-latest-then-resume round trip driven by store.Store rather than
// the teacher's checkpoint/reducer machinery (simplified away along with
// the reducer, per graph/engine.go's single-writer State model).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tripchat/tripplanner/config"
	"github.com/tripchat/tripplanner/fault"
	"github.com/tripchat/tripplanner/geocode"
	"github.com/tripchat/tripplanner/graph"
	"github.com/tripchat/tripplanner/graph/emit"
	"github.com/tripchat/tripplanner/graph/store"
	"github.com/tripchat/tripplanner/llm"
	"github.com/tripchat/tripplanner/memory"
	"github.com/tripchat/tripplanner/metrics"
	"github.com/tripchat/tripplanner/nodes"
	"github.com/tripchat/tripplanner/telemetry"
	"github.com/tripchat/tripplanner/toolkit"
	"github.com/tripchat/tripplanner/tripstate"
)

func main() {
	configPath := flag.String("config", "tripchat.yaml", "path to an optional YAML config override")
	runtimeDir := flag.String("runtime-dir", "", "override runtime_dir from config/env")
	logLevel := flag.String("log-level", "", "override log_level: minimal|detailed|selective")
	userID := flag.String("user-id", "", "override user_id from config/env")
	verbose := flag.Bool("verbose", false, "echo graph_node transitions to stderr as they happen")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tripchat: %v\n", err)
		os.Exit(1)
	}
	if *runtimeDir != "" {
		cfg.RuntimeDir = *runtimeDir
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *userID != "" {
		cfg.UserID = *userID
	}

	if err := os.MkdirAll(filepath.Join(cfg.RuntimeDir, "logs"), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "tripchat: creating runtime dir: %v\n", err)
		os.Exit(1)
	}

	runID := "run-" + randomSuffix()
	deps, cleanup, err := buildDeps(cfg, runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tripchat: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	var emitter emit.Emitter
	if *verbose {
		emitter = emit.NewLogEmitter(os.Stderr, false)
	}

	st := store.NewMemStore[*tripstate.State]()
	engine := graph.New[*tripstate.State](st, emitter, graph.Options{
		RecursionLimit: cfg.RecursionLimit(),
		Metrics:        deps.Metrics,
	})
	if err := nodes.Register(engine, deps); err != nil {
		fmt.Fprintf(os.Stderr, "tripchat: registering graph: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("tripchat: links-only trip planner. Describe your trip, or Ctrl-D to quit.")
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("> ")
	query, err := reader.ReadString('\n')
	if err != nil {
		return
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}

	ctx := context.Background()
	s := tripstate.NewState(runID, cfg.UserID, query, cfg.MaxGraphIters)

	final, err := engine.Run(ctx, runID, s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tripchat: run failed: %v\n", err)
		os.Exit(1)
	}

	for final.NeedsUserInput {
		final = resumeAfterQuestion(ctx, engine, st, reader, runID, final)
	}

	printFinal(final)
}

// resumeAfterQuestion presents final's clarifying questions (or pending
// disambiguation options), collects the user's answer into
// ConstraintOverrides, and re-invokes Run from the run's last saved step —
// the single save-then-load-latest round trip store.Store exists for.
func resumeAfterQuestion(ctx context.Context, engine *graph.Engine[*tripstate.State], st store.Store[*tripstate.State], reader *bufio.Reader, runID string, final *tripstate.State) *tripstate.State {
	if final.PendingDisambiguation != nil {
		d := final.PendingDisambiguation
		fmt.Printf("\nWhich %s did you mean?\n", d.Field)
		for i, opt := range d.Options {
			fmt.Printf("  %d. %s\n", i+1, opt)
		}
	} else {
		for _, q := range final.ClarifyingQuestions {
			fmt.Println("\n" + q)
		}
	}

	fmt.Print("> ")
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(answer)

	latest, _, err := st.LoadLatest(ctx, runID)
	if err != nil {
		latest = final
	}

	applyAnswer(latest, answer)
	latest.NeedsUserInput = false
	latest.ClarifyingQuestions = nil
	latest.TerminationReason = ""

	resumed, err := engine.Run(ctx, runID, latest)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tripchat: resume failed: %v\n", err)
		os.Exit(1)
	}
	return resumed
}

// applyAnswer folds a free-text answer into ConstraintOverrides so intent's
// heuristic fill and validator's geocoding pick it up on the next pass.
// A disambiguation answer is resolved against the pending options list
// (numeric or ordinal) before being treated as the place name for whichever
// field was pending; anything else is routed to UserQuery for intent to
// re-parse alongside the existing constraints.
func applyAnswer(s *tripstate.State, answer string) {
	if s.PendingDisambiguation != nil {
		d := s.PendingDisambiguation
		resolved := resolveOptionAnswer(d.Options, answer)
		switch d.Field {
		case "origin":
			s.ConstraintOverrides.Origin = resolved
		default:
			s.ConstraintOverrides.Destinations = []string{resolved}
		}
		s.HasOverrides = true
		s.PendingDisambiguation = nil
		return
	}

	s.UserQuery = s.UserQuery + "\n" + answer
}

// ordinalWords maps ordinal phrasings to a 1-based option index, matched
// against the lowercased answer in order so "1st"/"first"/"option 1" all
// resolve the same way.
var ordinalWords = []struct {
	phrase string
	n      int
}{
	{"1st", 1}, {"first", 1}, {"option 1", 1}, {"#1", 1},
	{"2nd", 2}, {"second", 2}, {"option 2", 2}, {"#2", 2},
	{"3rd", 3}, {"third", 3}, {"option 3", 3}, {"#3", 3},
}

// resolveOptionAnswer expands a numbered or ordinal disambiguation answer
// ("2", "2nd", "option 2") into the matching option text, falling back to a
// substring match and finally the raw answer unchanged.
func resolveOptionAnswer(options []string, answer string) string {
	a := strings.TrimSpace(answer)
	if a == "" || len(options) == 0 {
		return a
	}

	if n, err := strconv.Atoi(a); err == nil && n >= 1 && n <= len(options) {
		return options[n-1]
	}

	lower := strings.ToLower(a)
	for _, ow := range ordinalWords {
		if strings.Contains(lower, ow.phrase) && ow.n <= len(options) {
			return options[ow.n-1]
		}
	}

	for _, opt := range options {
		if strings.Contains(lower, strings.ToLower(opt)) {
			return opt
		}
	}

	return a
}

func printFinal(final *tripstate.State) {
	if final.FinalAnswer != "" {
		fmt.Println("\n" + final.FinalAnswer)
	}
	if final.ICSPath != "" {
		fmt.Printf("\ncalendar: %s (%d events)\n", final.ICSPath, final.ICSEventCount)
	}
	if final.Evaluation != nil {
		fmt.Printf("evaluation: status=%s average=%.2f\n", final.Evaluation.Status, final.Evaluation.Average)
	}
	for _, w := range final.ValidationWarnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}

// buildDeps wires every node collaborator from cfg, choosing a live model
// provider when its API key env var is set and falling back through
// Anthropic -> Google -> OpenAI -> a deterministic mock so the CLI still
// runs end to end (with canned text) in an offline demo environment.
func buildDeps(cfg config.Config, runID string) (*nodes.Deps, func(), error) {
	traceFile, err := os.OpenFile(filepath.Join(cfg.RuntimeDir, "logs", "trace.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening trace log: %w", err)
	}
	combinedFile, err := os.OpenFile(filepath.Join(cfg.RuntimeDir, "logs", "combined_"+runID+".jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		_ = traceFile.Close()
		return nil, nil, fmt.Errorf("opening combined log: %w", err)
	}
	tel := telemetry.NewController(telemetryMode(cfg.LogLevel), runID, cfg.UserID, traceFile, combinedFile)

	mem, err := openMemoryStore(cfg)
	if err != nil {
		_ = traceFile.Close()
		_ = combinedFile.Close()
		return nil, nil, err
	}

	cleanup := func() {
		_ = mem.Close()
		_ = traceFile.Close()
		_ = combinedFile.Close()
	}

	return &nodes.Deps{
		Model:     buildModel(),
		Tools:     toolkit.NewDefaultRegistry(),
		Geocoder:  geocode.NewStaticGeocoder(),
		Memory:    mem,
		Fault:     buildFault(cfg),
		Telemetry: tel,
		Metrics:   metrics.NewCollector(prometheus.NewRegistry()),
		Config:    cfg,
	}, cleanup, nil
}

// openMemoryStore picks memory.NewMySQLStore when cfg.MySQLDSN is set,
// otherwise memory.NewSQLiteStore under ChromaPersistDir — the MySQL path
// is for a shared multi-process deployment; the SQLite path is this
// binary's single-process default.
func openMemoryStore(cfg config.Config) (memory.Store, error) {
	if cfg.MySQLDSN != "" {
		store, err := memory.NewMySQLStore(cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("opening mysql memory store: %w", err)
		}
		return store, nil
	}

	if err := os.MkdirAll(cfg.ChromaPersistDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating memory dir: %w", err)
	}
	store, err := memory.NewSQLiteStore(filepath.Join(cfg.ChromaPersistDir, "memory.db"))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite memory store: %w", err)
	}
	return store, nil
}

func buildModel() llm.Model {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return llm.NewAnthropicModel(key, os.Getenv("ANTHROPIC_MODEL"))
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return llm.NewGoogleModel(key, os.Getenv("GOOGLE_MODEL"))
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return llm.NewOpenAIModel(key, os.Getenv("OPENAI_MODEL"))
	}
	return &llm.MockModel{Responses: []string{
		`{}`,
		`{"plan":[{"title":"Synthesize","step_type":"SYNTHESIZE"}]}`,
		"## Summary\nNo live model is configured; set ANTHROPIC_API_KEY, GOOGLE_API_KEY, or OPENAI_API_KEY.\n\nVerify with official sources before booking; this is not legal advice.",
	}}
}

func buildFault(cfg config.Config) *fault.Injector {
	inj := fault.NewInjector(cfg.FailureSeed)
	if cfg.SimulateToolTimeout {
		inj.EnableSite(fault.SiteToolTimeout, 1.0)
	}
	if cfg.SimulateBadRetrieval {
		inj.EnableSite(fault.SiteBadRetrieval, 1.0)
	}
	return inj
}

// telemetryMode maps config.Config's LogLevel onto telemetry.Mode. "info"
// and any other unrecognized value default to minimal, since that's the
// quietest tier that still always writes *_error events.
func telemetryMode(logLevel string) telemetry.Mode {
	switch telemetry.Mode(logLevel) {
	case telemetry.ModeDetailed, telemetry.ModeSelective:
		return telemetry.Mode(logLevel)
	default:
		return telemetry.ModeMinimal
	}
}

func randomSuffix() string {
	rng := graph.InitRNG(fmt.Sprintf("%d", os.Getpid()))
	return fmt.Sprintf("%08x", rng.Uint32())
}
