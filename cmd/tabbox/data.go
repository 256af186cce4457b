package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/piwi3910/TabBox/internal/model"
	"github.com/piwi3910/TabBox/internal/project"
)

func runProfiles(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("profiles", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("profiles", project.DefaultProfilesPath(), "custom machine profiles file")
	remove := fs.String("remove", "", "delete the named custom profile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := project.InstallCustomProfiles(*path); err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if *remove != "" {
		return removeProfile(*path, *remove, stdout)
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSOURCE")
	for _, p := range model.AllProfiles() {
		kind, source := "router", "custom"
		if p.Laser {
			kind = "laser"
		}
		if p.IsBuiltIn {
			source = "built-in"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.Name, kind, source)
	}
	return tw.Flush()
}

func removeProfile(path, name string, stdout io.Writer) error {
	saved, err := project.LoadCustomProfiles(path)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	if err := model.RemoveCustomProfile(name); err != nil {
		return err
	}
	kept := saved[:0]
	for _, p := range saved {
		if p.Name != name {
			kept = append(kept, p)
		}
	}
	if err := project.SaveCustomProfiles(path, kept); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	fmt.Fprintf(stdout, "removed profile %q\n", name)
	return nil
}

type dataPaths struct {
	config    string
	profiles  string
	templates string
}

func (p *dataPaths) register(fs *flag.FlagSet) {
	fs.StringVar(&p.config, "config", project.DefaultConfigPath(), "application config file")
	fs.StringVar(&p.profiles, "profiles", project.DefaultProfilesPath(), "custom machine profiles file")
	fs.StringVar(&p.templates, "templates", project.DefaultTemplatePath(), "design templates file")
}

func runBackup(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var paths dataPaths
	paths.register(fs)
	out := fs.String("out", "tabbox-backup.json", "backup file to write")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := project.LoadAppConfig(paths.config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	profiles, err := project.LoadCustomProfiles(paths.profiles)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}
	templates, err := project.LoadTemplates(paths.templates)
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	if err := project.ExportAllData(*out, cfg, profiles, templates); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "backed up %d profiles and %d templates to %s\n", len(profiles), len(templates.Templates), *out)
	return nil
}

func runRestore(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var paths dataPaths
	paths.register(fs)
	in := fs.String("in", "tabbox-backup.json", "backup file to read")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backup, err := project.ImportAllData(*in)
	if err != nil {
		return err
	}
	if err := project.SaveAppConfig(paths.config, backup.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := project.SaveCustomProfiles(paths.profiles, backup.Profiles); err != nil {
		return fmt.Errorf("save profiles: %w", err)
	}
	if err := project.SaveTemplates(paths.templates, backup.Templates); err != nil {
		return fmt.Errorf("save templates: %w", err)
	}
	fmt.Fprintf(stdout, "restored %d profiles and %d templates from %s (backup %s)\n",
		len(backup.Profiles), len(backup.Templates.Templates), *in, backup.Version)
	return nil
}
