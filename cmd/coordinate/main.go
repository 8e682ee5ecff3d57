// Command coordinate runs the spatial coordination pipeline as a batch
// transform: classified elements in, adjusted elements plus clash report
// out, with optional device generation and distribution routing. File I/O
// lives here; the engine packages stay in-memory only.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/red1oon/2DtoBlender-sub002/pkg/clash"
	"github.com/red1oon/2DtoBlender-sub002/pkg/logging"
	"github.com/red1oon/2DtoBlender-sub002/pkg/metrics"
	"github.com/red1oon/2DtoBlender-sub002/pkg/model"
	"github.com/red1oon/2DtoBlender-sub002/pkg/pipeline"
	"github.com/red1oon/2DtoBlender-sub002/pkg/placement"
	"github.com/red1oon/2DtoBlender-sub002/pkg/routing"
	"github.com/red1oon/2DtoBlender-sub002/pkg/standards"
)

// InputDocument is the batch input produced by the external classifier
type InputDocument struct {
	Profile   standards.BuildingProfile `json:"profile"`
	Elements  []*model.SpatialElement   `json:"elements"`
	Corridors []routing.Corridor        `json:"corridors,omitempty"`
	Supplies  []routing.SupplyPoint     `json:"supplies,omitempty"`
	Region    *placement.Region         `json:"region,omitempty"`
	// Generate names the discipline/class to lay out inside Region
	Generate *GenerateRequest `json:"generate,omitempty"`
}

// GenerateRequest selects the standard used for device generation
type GenerateRequest struct {
	Discipline model.Discipline   `json:"discipline"`
	Class      model.ElementClass `json:"class"`
}

// OutputDocument is handed to the external persistence and visualization
// collaborators
type OutputDocument struct {
	Elements     []*model.SpatialElement `json:"elements"`
	Clashes      []clash.Record          `json:"clashes"`
	Devices      []routing.Device        `json:"devices,omitempty"`
	Network      *routing.Network        `json:"network,omitempty"`
	NetworkStats []routing.ZoneStats     `json:"network_stats,omitempty"`
	Diagnostics  []DiagnosticOut         `json:"diagnostics"`
}

// DiagnosticOut is the serialized diagnostic form
type DiagnosticOut struct {
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	ElementID string `json:"element_id,omitempty"`
	ZoneID    string `json:"zone_id,omitempty"`
	Message   string `json:"message"`
}

func main() {
	var (
		inputFile      = flag.String("input", "", "Input document (JSON), - for stdin")
		outputFile     = flag.String("output", "", "Output document (JSON), - or empty for stdout")
		configFile     = flag.String("config", "", "Pipeline configuration (YAML), defaults applied when omitted")
		standardsFile  = flag.String("standards", "", "Placement standards overrides (YAML), merged over built-ins")
		heightsFile    = flag.String("heights", "", "Height rule overrides (YAML), merged over built-ins")
		clearancesFile = flag.String("clearances", "", "Discipline-pair clearance rules (YAML), replaces built-ins")
		logLevel       = flag.String("log-level", "INFO", "Log level: DEBUG, INFO, WARN, ERROR")
	)
	flag.Parse()

	if *inputFile == "" {
		log.Fatal("--input is required")
	}

	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(*logLevel))

	cfg := pipeline.DefaultConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			log.Fatalf("Failed to open config: %v", err)
		}
		cfg, err = pipeline.LoadConfig(f)
		f.Close()
		if err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
	}

	input, err := readInput(*inputFile)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	p, err := pipeline.New(cfg, input.Profile, logger, metrics.DefaultRegistry())
	if err != nil {
		log.Fatalf("Failed to build pipeline: %v", err)
	}
	if err := loadTables(p, *standardsFile, *heightsFile, *clearancesFile); err != nil {
		log.Fatalf("Failed to load rule tables: %v", err)
	}

	result, err := p.Coordinate(input.Elements)
	if err != nil {
		log.Fatalf("Coordination failed: %v", err)
	}

	output := &OutputDocument{
		Elements: result.Elements,
		Clashes:  result.Clashes,
	}
	diags := result.Diagnostics

	if input.Generate != nil && input.Region != nil {
		gen, err := p.GenerateAndRoute(*input.Region, input.Generate.Discipline, input.Generate.Class, &routing.Graph{Corridors: input.Corridors}, input.Supplies)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		output.Elements = append(output.Elements, gen.Elements...)
		output.Devices = gen.Devices
		output.Network = gen.Network
		output.NetworkStats = gen.Stats
		diags.Append(gen.Diagnostics)
	}

	for _, d := range diags {
		output.Diagnostics = append(output.Diagnostics, DiagnosticOut{
			Type:      d.Type.String(),
			Severity:  d.Severity.String(),
			ElementID: d.ElementID,
			ZoneID:    d.ZoneID,
			Message:   d.Message,
		})
	}

	if err := writeOutput(*outputFile, output); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}

// loadTables replaces the pipeline's built-in rule tables with the YAML
// files named on the command line, where given
func loadTables(p *pipeline.Pipeline, standardsFile, heightsFile, clearancesFile string) error {
	if standardsFile != "" {
		f, err := os.Open(standardsFile)
		if err != nil {
			return err
		}
		table, err := standards.LoadTable(f)
		f.Close()
		if err != nil {
			return err
		}
		p.Standards = table
	}
	if heightsFile != "" {
		f, err := os.Open(heightsFile)
		if err != nil {
			return err
		}
		table, err := standards.LoadHeightTable(f)
		f.Close()
		if err != nil {
			return err
		}
		p.Heights = table
	}
	if clearancesFile != "" {
		f, err := os.Open(clearancesFile)
		if err != nil {
			return err
		}
		rules, err := standards.LoadClearanceRules(f)
		f.Close()
		if err != nil {
			return err
		}
		p.Clearances = rules
	}
	return nil
}

// readInput parses the input document from a file or stdin
func readInput(path string) (*InputDocument, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = os.ReadFile("/dev/stdin")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var input InputDocument
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("invalid input document: %w", err)
	}
	return &input, nil
}

// writeOutput serializes the output document to a file or stdout
func writeOutput(path string, output *OutputDocument) error {
	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
