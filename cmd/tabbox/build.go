package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/piwi3910/TabBox/internal/engine"
	"github.com/piwi3910/TabBox/internal/export"
	"github.com/piwi3910/TabBox/internal/gcode"
	"github.com/piwi3910/TabBox/internal/importer"
	"github.com/piwi3910/TabBox/internal/logger"
	"github.com/piwi3910/TabBox/internal/model"
	"github.com/piwi3910/TabBox/internal/project"
	"github.com/piwi3910/TabBox/internal/solid"
)

type buildOptions struct {
	configPath    string
	profilesPath  string
	templatesPath string
	logLevel      string

	designPath string
	template   string
	name       string
	width      float64
	height     float64
	depth      float64
	thickness  float64
	spacing    float64

	cutouts string
	panel   string
	corner  string

	construction bool
	scale        float64
	profile      string

	dxf, svg, pdf, labels, xlsx, gcode, stl string
	gcodePanel                              string
	cells                                   int

	save         string
	saveTemplate string
}

func (o *buildOptions) register(fs *flag.FlagSet) {
	fs.StringVar(&o.configPath, "config", project.DefaultConfigPath(), "application config file")
	fs.StringVar(&o.profilesPath, "profiles", project.DefaultProfilesPath(), "custom machine profiles file")
	fs.StringVar(&o.templatesPath, "templates", project.DefaultTemplatePath(), "design templates file")
	fs.StringVar(&o.logLevel, "log-level", "", "log level (default from config)")

	fs.StringVar(&o.designPath, "design", "", "load a saved design")
	fs.StringVar(&o.template, "template", "", "start from a named template")
	fs.StringVar(&o.name, "name", "", "design name")
	fs.Float64Var(&o.width, "w", 0, "inner width in mm")
	fs.Float64Var(&o.height, "h", 0, "inner height in mm")
	fs.Float64Var(&o.depth, "d", 0, "inner depth in mm")
	fs.Float64Var(&o.thickness, "t", 0, "material thickness in mm (default from config)")
	fs.Float64Var(&o.spacing, "s", 0, "gap between panels in the layout (default from config)")

	fs.StringVar(&o.cutouts, "cutouts", "", "import cutouts from a CSV, XLSX or DXF file")
	fs.StringVar(&o.panel, "panel", engine.PanelBottom, "panel for DXF cutouts")
	fs.StringVar(&o.corner, "corner", "sw", "corner DXF cutouts are measured from")

	fs.BoolVar(&o.construction, "construction", false, "include construction lines")
	fs.Float64Var(&o.scale, "scale", 0, "coordinate scale (default from config)")
	fs.StringVar(&o.profile, "profile", "", "machine profile for G-code (default from config)")

	fs.StringVar(&o.dxf, "dxf", "", "write a DXF drawing")
	fs.StringVar(&o.svg, "svg", "", "write an SVG drawing")
	fs.StringVar(&o.pdf, "pdf", "", "write a PDF layout and summary")
	fs.StringVar(&o.labels, "labels", "", "write a PDF sheet of panel labels")
	fs.StringVar(&o.xlsx, "xlsx", "", "write an Excel panel schedule")
	fs.StringVar(&o.gcode, "gcode", "", "write G-code")
	fs.StringVar(&o.gcodePanel, "gcode-panel", "", "limit the G-code to one panel (bottom, right, upper, left, top, lower)")
	fs.StringVar(&o.stl, "stl", "", "write an STL mesh")
	fs.IntVar(&o.cells, "stl-cells", solid.DefaultCells, "STL mesh resolution")

	fs.StringVar(&o.save, "save", "", "save the design to this file")
	fs.StringVar(&o.saveTemplate, "save-template", "", "save the design as a template with this name")
}

func runBuild(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var o buildOptions
	o.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := project.LoadAppConfig(o.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if set["log-level"] {
		level = o.logLevel
	}
	log := logger.Build(logger.Config{Level: level, Console: true, Component: "cli"}, stderr)

	if err := project.InstallCustomProfiles(o.profilesPath); err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if set["profile"] {
		if err := checkProfile(o.profile); err != nil {
			return err
		}
	}

	d, err := o.loadDesign(cfg, set)
	if err != nil {
		return err
	}
	if o.cutouts != "" {
		imported, err := o.importCutouts(&log)
		if err != nil {
			return err
		}
		d.Cutouts = append(d.Cutouts, imported...)
	}

	box, err := engine.Build(d)
	if err != nil {
		return err
	}
	issues := box.Issues()
	for _, name := range engine.PanelNames {
		for _, is := range issues[name] {
			log.Warn().Str("panel", name).Str("cutout", is.Cutout).Msg(is.Message)
		}
	}

	settings := o.settings(cfg, d, set)
	if err := printSummary(stdout, d, box); err != nil {
		return err
	}
	if err := o.writeOutputs(&log, d, box, settings); err != nil {
		return err
	}
	return o.persist(&log, cfg, d)
}

// loadDesign starts from a saved design, a template or the config defaults,
// then applies any dimension flags given explicitly.
func (o *buildOptions) loadDesign(cfg model.AppConfig, set map[string]bool) (model.Design, error) {
	var d model.Design
	switch {
	case o.designPath != "":
		var err error
		if d, err = project.LoadDesign(o.designPath); err != nil {
			return model.Design{}, err
		}
	case o.template != "":
		store, err := project.LoadTemplates(o.templatesPath)
		if err != nil {
			return model.Design{}, fmt.Errorf("load templates: %w", err)
		}
		t := store.FindByName(o.template)
		if t == nil {
			return model.Design{}, fmt.Errorf("no template named %q", o.template)
		}
		name := o.name
		if name == "" {
			name = t.Name
		}
		d = t.ToDesign(name)
	default:
		d = model.NewDesign("Box", 0, 0, 0, cfg.DefaultThickness, cfg.DefaultSpacing)
	}

	if set["w"] {
		d.Width = o.width
	}
	if set["h"] {
		d.Height = o.height
	}
	if set["d"] {
		d.Depth = o.depth
	}
	if set["t"] {
		d.Thickness = o.thickness
	}
	if set["s"] {
		d.Spacing = o.spacing
	}
	if set["name"] {
		d.Name = o.name
	}
	return d, nil
}

func (o *buildOptions) importCutouts(log *zerolog.Logger) ([]model.CutoutSpec, error) {
	corner, err := model.ParseCorner(o.corner)
	if err != nil {
		return nil, err
	}
	res := importer.ImportFile(o.cutouts, o.panel, corner)
	for _, w := range res.Warnings {
		log.Warn().Str("file", o.cutouts).Msg(w)
	}
	if len(res.Errors) > 0 {
		return nil, fmt.Errorf("import %s: %s", o.cutouts, strings.Join(res.Errors, "; "))
	}
	log.Info().Str("file", o.cutouts).Int("cutouts", len(res.Cutouts)).Msg("cutouts imported")
	return res.Cutouts, nil
}

func (o *buildOptions) settings(cfg model.AppConfig, d model.Design, set map[string]bool) model.OutputSettings {
	s := model.DefaultOutputSettings()
	cfg.ApplyToSettings(&s)
	s = s.ForDesign(d)
	s.DrawConstruction = o.construction
	if set["scale"] {
		s.Scale = o.scale
	}
	if set["profile"] {
		s.Profile = o.profile
	}
	return s
}

func (o *buildOptions) writeOutputs(log *zerolog.Logger, d model.Design, box *engine.Box, settings model.OutputSettings) error {
	steps := []struct {
		path  string
		kind  string
		write func(path string) error
	}{
		{o.dxf, "dxf", func(p string) error { return export.ExportDXF(p, box, settings) }},
		{o.svg, "svg", func(p string) error { return export.ExportSVG(p, box, settings) }},
		{o.pdf, "pdf", func(p string) error { return export.ExportPDF(p, box, settings) }},
		{o.labels, "labels", func(p string) error { return export.ExportLabels(p, box, d.Name) }},
		{o.xlsx, "xlsx", func(p string) error { return export.ExportSchedule(p, box) }},
		{o.gcode, "gcode", func(p string) error { return writeGCode(log, p, box, settings, o.gcodePanel) }},
		{o.stl, "stl", func(p string) error { return writeSTL(log, p, box, o.cells) }},
	}
	for _, st := range steps {
		if st.path == "" {
			continue
		}
		if err := st.write(st.path); err != nil {
			return fmt.Errorf("write %s: %w", st.kind, err)
		}
		log.Info().Str("format", st.kind).Str("path", st.path).Msg("written")
	}
	return nil
}

// checkProfile rejects a machine profile name that is neither built in nor
// installed from the profiles file.
func checkProfile(name string) error {
	names := model.GetProfileNames()
	for _, n := range names {
		if n == name {
			return nil
		}
	}
	return fmt.Errorf("unknown profile %q (available: %s)", name, strings.Join(names, ", "))
}

// writeGCode writes the whole box, or only the named panel when panel is set.
func writeGCode(log *zerolog.Logger, path string, box *engine.Box, settings model.OutputSettings, panel string) error {
	gen := gcode.New(settings)
	var (
		code string
		err  error
	)
	if panel != "" {
		code, err = gen.GeneratePanel(box, panel)
	} else {
		code, err = gen.GenerateBox(box)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(code), 0644); err != nil {
		return err
	}
	st := gcode.Summarize(gcode.ParseGCode(code))
	log.Info().
		Str("profile", gen.Profile().Name).
		Int("moves", st.Moves).
		Int("plunges", st.Plunges).
		Float64("cut_mm", st.CutLength).
		Float64("rapid_mm", st.RapidDist).
		Msg("toolpath")
	return nil
}

func writeSTL(log *zerolog.Logger, path string, box *engine.Box, cells int) error {
	meshes, err := solid.SaveSTL(path, box, cells)
	if err != nil {
		return err
	}
	total := 0
	for _, m := range meshes {
		total += m.Triangles
	}
	log.Info().Int("triangles", total).Int("cells", cells).Msg("mesh")
	return nil
}

func (o *buildOptions) persist(log *zerolog.Logger, cfg model.AppConfig, d model.Design) error {
	if o.save != "" {
		if err := project.SaveDesign(o.save, d); err != nil {
			return fmt.Errorf("save design: %w", err)
		}
		cfg.AddRecent(o.save)
		if err := project.SaveAppConfig(o.configPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		log.Info().Str("path", o.save).Msg("design saved")
	}
	if o.saveTemplate != "" {
		store, err := project.LoadTemplates(o.templatesPath)
		if err != nil {
			return fmt.Errorf("load templates: %w", err)
		}
		store.Add(model.NewDesignTemplate(o.saveTemplate, "", d))
		if err := project.SaveTemplates(o.templatesPath, store); err != nil {
			return fmt.Errorf("save templates: %w", err)
		}
		log.Info().Str("template", o.saveTemplate).Msg("template saved")
	}
	return nil
}

func printSummary(w io.Writer, d model.Design, box *engine.Box) error {
	fmt.Fprintf(w, "%s: %g x %g x %g mm, %g mm material\n", d.Name, d.Width, d.Height, d.Depth, d.Thickness)
	tabs := box.Tabs()
	for _, dim := range []string{"width", "height", "depth"} {
		t := tabs[dim]
		fmt.Fprintf(w, "  %-6s %d tabs of %.2f mm\n", dim, t.Count, t.Length.Dist)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PANEL\tSIZE\tTABS E/W\tTABS N/S\tCUTOUTS\tCUT LENGTH")
	for _, p := range export.Summarize(box) {
		fmt.Fprintf(tw, "%s\t%.1f x %.1f\t%d\t%d\t%d\t%.1f\n",
			p.Name, p.Width, p.Height, p.EWTabs, p.NSTabs, p.Cutouts, p.CutLength)
	}
	return tw.Flush()
}
