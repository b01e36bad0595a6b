package config

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Parser parses and validates layout files.
type Parser struct {
	validator *validator.Validate
}

// NewParser creates a parser with a fresh validator instance.
func NewParser() *Parser {
	return &Parser{validator: validator.New()}
}

// ParseFile reads, parses, and validates a layout file from disk.
func (p *Parser) ParseFile(path string) (*LayoutFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	return p.Parse(data)
}

// Parse parses and validates layout YAML.
func (p *Parser) Parse(data []byte) (*LayoutFile, error) {
	var layout LayoutFile
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("failed to parse layout YAML: %w", err)
	}

	if err := p.validator.Struct(&layout); err != nil {
		return nil, fmt.Errorf("layout validation failed: %w", err)
	}

	if err := p.validateReferences(&layout); err != nil {
		return nil, err
	}

	return &layout, nil
}

// validateReferences checks cross-references and per-op requirements that
// struct tags cannot express.
func (p *Parser) validateReferences(layout *LayoutFile) error {
	names := make(map[string]*DeviceConfig, len(layout.Devices))
	for i := range layout.Devices {
		dev := &layout.Devices[i]
		if _, dup := names[dev.Name]; dup {
			return fmt.Errorf("duplicate device name %q", dev.Name)
		}
		names[dev.Name] = dev

		if dev.Size != "" {
			if _, err := ParseSize(dev.Size); err != nil {
				return fmt.Errorf("device %q: invalid size %q: %w", dev.Name, dev.Size, err)
			}
		}
		if dev.Kind == "partition" {
			if dev.Disk == "" {
				return fmt.Errorf("partition %q: disk is required", dev.Name)
			}
			if dev.Number <= 0 {
				return fmt.Errorf("partition %q: number is required", dev.Name)
			}
		}
	}

	// second pass: parent/member references
	for _, dev := range layout.Devices {
		for _, ref := range append(append([]string{}, dev.Parents...), dev.Members...) {
			if _, ok := names[ref]; !ok {
				return fmt.Errorf("device %q references unknown device %q", dev.Name, ref)
			}
		}
		if dev.Disk != "" {
			if _, ok := names[dev.Disk]; !ok {
				return fmt.Errorf("partition %q references unknown disk %q", dev.Name, dev.Disk)
			}
		}
	}

	for i, op := range layout.Operations {
		if err := validateOperation(&op, names); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, op.Op, err)
		}
	}
	return nil
}

func validateOperation(op *OperationConfig, names map[string]*DeviceConfig) error {
	switch op.Op {
	case "add-member", "remove-member":
		if op.Container == "" || op.Member == "" {
			return fmt.Errorf("container and member are required")
		}
		for _, ref := range []string{op.Container, op.Member} {
			if _, ok := names[ref]; !ok {
				return fmt.Errorf("unknown device %q", ref)
			}
		}
		return nil
	case "resize-device", "resize-format":
		if op.Size == "" {
			return fmt.Errorf("size is required")
		}
		if _, err := ParseSize(op.Size); err != nil {
			return fmt.Errorf("invalid size %q: %w", op.Size, err)
		}
	case "create-format":
		if op.Format == nil {
			return fmt.Errorf("format is required")
		}
	}
	if op.Device == "" {
		return fmt.Errorf("device is required")
	}
	if _, ok := names[op.Device]; !ok {
		return fmt.Errorf("unknown device %q", op.Device)
	}
	return nil
}

// ParseSize converts a human-readable size string ("500 MiB") to bytes.
func ParseSize(s string) (uint64, error) {
	return humanize.ParseBytes(s)
}

// FormatSize renders a byte count in IEC units for display.
func FormatSize(bytes uint64) string {
	return humanize.IBytes(bytes)
}
