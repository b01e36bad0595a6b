package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blockplan/blockplan/pkg/config"
	"github.com/blockplan/blockplan/pkg/devicetree"
	"github.com/blockplan/blockplan/pkg/engine"
	"github.com/blockplan/blockplan/pkg/model"
	"github.com/blockplan/blockplan/pkg/telemetry"
)

// Planner turns a layout file into a computed Plan. It owns no state
// between calls; each Compute builds a fresh session.
type Planner struct {
	log     zerolog.Logger
	metrics *telemetry.Metrics
}

// New creates a planner. metrics may be nil.
func New(log zerolog.Logger, metrics *telemetry.Metrics) *Planner {
	return &Planner{
		log:     log.With().Str("component", "planner").Logger(),
		metrics: metrics,
	}
}

// Session is one planning session: a device tree populated from a layout
// plus the action registry mutating it. Sessions are single-threaded and
// discarded when the plan is emitted.
type Session struct {
	Tree     *devicetree.Tree
	Registry *engine.Registry

	devices map[string]*model.Device
}

// Device returns the session device with the given name, or nil.
func (s *Session) Device(name string) *model.Device {
	return s.devices[name]
}

// BuildSession constructs every declared device and adds the existing ones
// to a fresh tree. Proposed (exists:false) devices are constructed but
// enter the tree only through create-device operations.
func (p *Planner) BuildSession(layout *config.LayoutFile) (*Session, error) {
	s := &Session{
		Tree:    devicetree.New(p.log),
		devices: make(map[string]*model.Device, len(layout.Devices)),
	}
	s.Registry = engine.NewRegistry(s.Tree, p.log, p.metrics)

	for i := range layout.Devices {
		dev, err := p.buildDevice(s, &layout.Devices[i])
		if err != nil {
			return nil, err
		}
		s.devices[dev.Name] = dev
		if dev.Exists {
			if err := s.Tree.AddDevice(dev); err != nil {
				return nil, err
			}
		}
	}

	p.metrics.SetTreeDevices(s.Tree.Len())
	return s, nil
}

func (p *Planner) buildDevice(s *Session, dc *config.DeviceConfig) (*model.Device, error) {
	var size uint64
	if dc.Size != "" {
		parsed, err := config.ParseSize(dc.Size)
		if err != nil {
			return nil, fmt.Errorf("device %q: %w", dc.Name, err)
		}
		size = parsed
	}

	parentNames := dc.Parents
	if dc.Kind == "partition" {
		parentNames = []string{dc.Disk}
	} else if dc.Kind == "lvm-vg" && len(dc.Members) > 0 {
		parentNames = dc.Members
	}
	parents := make([]*model.Device, 0, len(parentNames))
	for _, name := range parentNames {
		parent, ok := s.devices[name]
		if !ok {
			return nil, fmt.Errorf("device %q: parent %q must be declared first", dc.Name, name)
		}
		parents = append(parents, parent)
	}

	var dev *model.Device
	if dc.Kind == "partition" {
		dev = model.NewPartition(dc.Name, dc.Number, size, dc.Exists, parents[0])
	} else {
		dev = model.NewDevice(dc.Name, model.DeviceKind(dc.Kind), size, dc.Exists, parents...)
	}

	if dc.Format != nil {
		f, err := buildFormat(dc.Format, dev)
		if err != nil {
			return nil, fmt.Errorf("device %q: %w", dc.Name, err)
		}
		dev.SetFormat(f)
	}
	return dev, nil
}

func buildFormat(fc *config.FormatConfig, dev *model.Device) (*model.Format, error) {
	f := &model.Format{
		Kind:       model.FormatKind(fc.Kind),
		FSType:     fc.FSType,
		Mountpoint: fc.Mountpoint,
		Label:      fc.Label,
		Exists:     fc.Exists,
		Resizable:  fc.Resizable,
	}
	if fc.MinSize != "" {
		size, err := config.ParseSize(fc.MinSize)
		if err != nil {
			return nil, fmt.Errorf("invalid min_size: %w", err)
		}
		f.MinSize = size
	}
	if fc.MaxSize != "" {
		size, err := config.ParseSize(fc.MaxSize)
		if err != nil {
			return nil, fmt.Errorf("invalid max_size: %w", err)
		}
		f.MaxSize = size
	}
	if f.Exists && dev != nil {
		f.TargetSize = dev.Size
	}
	return f, nil
}

// Propose constructs and registers every operation against the session.
// The first failure aborts; earlier operations stay registered so the
// caller can inspect or correct the proposal.
func (p *Planner) Propose(s *Session, ops []config.OperationConfig) error {
	for i := range ops {
		if err := p.propose(s, &ops[i]); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, ops[i].Op, err)
		}
	}
	return nil
}

func (p *Planner) propose(s *Session, op *config.OperationConfig) error {
	var (
		action *engine.Action
		err    error
	)

	switch op.Op {
	case "add-member", "remove-member":
		container, member := s.Device(op.Container), s.Device(op.Member)
		if container == nil || member == nil {
			return fmt.Errorf("unknown container or member")
		}
		if op.Op == "add-member" {
			action, err = engine.NewAddMember(container, member)
		} else {
			action, err = engine.NewRemoveMember(container, member)
		}
	default:
		dev := s.Device(op.Device)
		if dev == nil {
			return fmt.Errorf("unknown device %q", op.Device)
		}
		switch op.Op {
		case "create-device":
			action, err = engine.NewCreateDevice(dev)
		case "destroy-device":
			action, err = engine.NewDestroyDevice(dev)
		case "resize-device":
			var size uint64
			if size, err = config.ParseSize(op.Size); err == nil {
				action, err = engine.NewResizeDevice(dev, size)
			}
		case "resize-format":
			var size uint64
			if size, err = config.ParseSize(op.Size); err == nil {
				action, err = engine.NewResizeFormat(dev, size)
			}
		case "create-format":
			if op.Format == nil {
				return fmt.Errorf("format is required")
			}
			var f *model.Format
			if f, err = buildFormat(op.Format, nil); err == nil {
				action, err = engine.NewCreateFormat(dev, f)
			}
		case "destroy-format":
			action, err = engine.NewDestroyFormat(dev)
		default:
			return fmt.Errorf("unsupported op %q", op.Op)
		}
	}
	if err != nil {
		return err
	}
	return s.Registry.Register(action)
}

// Compute runs a full planning session: build the tree, propose every
// operation, prune, sort, and emit the plan.
func (p *Planner) Compute(layout *config.LayoutFile) (*Plan, error) {
	s, err := p.BuildSession(layout)
	if err != nil {
		return nil, err
	}
	if err := p.Propose(s, layout.Operations); err != nil {
		p.metrics.RecordPlanComputed("error", 0)
		return nil, err
	}
	return p.Finalize(s)
}

// Finalize prunes and sorts a session's registry and emits the plan.
func (p *Planner) Finalize(s *Session) (*Plan, error) {
	for _, a := range s.Registry.Actions() {
		p.log.Debug().Stringer("action", a).Msg("pending action")
	}

	s.Registry.Prune()
	sorted, err := s.Registry.Sort()
	if err != nil {
		p.metrics.RecordPlanComputed("error", 0)
		return nil, err
	}

	plan := &Plan{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Steps:     make([]Step, 0, len(sorted)),
	}
	for i, a := range sorted {
		plan.Steps = append(plan.Steps, Step{
			Seq:      i + 1,
			ActionID: a.ID(),
			Kind:     string(a.Kind()),
			Device:   a.Device().Name,
			Detail:   stepDetail(a),
		})
		p.log.Debug().Stringer("action", a).Int("seq", i+1).Msg("ordered action")
	}

	p.metrics.RecordPlanComputed("ok", len(plan.Steps))
	p.metrics.SetTreeDevices(s.Tree.Len())
	p.log.Info().Str("plan_id", plan.ID).Int("steps", len(plan.Steps)).
		Msg("computed plan")
	return plan, nil
}

func stepDetail(a *engine.Action) string {
	switch a.Kind() {
	case engine.KindResizeDevice, engine.KindResizeFormat:
		return fmt.Sprintf("to %s", config.FormatSize(a.NewSize()))
	case engine.KindCreateFormat:
		return a.Format().Describe()
	case engine.KindAddMember, engine.KindRemoveMember:
		return fmt.Sprintf("in %s", a.Container().Name)
	case engine.KindCreateDevice:
		return config.FormatSize(a.Device().Size)
	}
	return ""
}
