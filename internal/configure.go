package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/eghojansu/stick/pkg/config"
)

// maxConfigDepth bounds nested [configs] includes.
const maxConfigDepth = 16

// Config loads the INI or YAML file at path and applies it with Apply.
// Files named in a [configs] section are resolved relative to the file
// that names them.
//
// Example:
//
//	; app.ini
//	DEBUG = 1
//	CACHE = redis=localhost:6379
//
//	[CORS]
//	origin = https://example.com
//
//	[routes]
//	GET home / = Home.index
//
//	[rests]
//	blog /blog = Blog
//
//	[redirects]
//	GET /old = home
func (a *App) Config(path string) error {
	return a.loadConfig(path, make(map[string]bool), 0)
}

func (a *App) loadConfig(path string, seen map[string]bool, depth int) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Join(config.ErrRead, err)
	}
	if seen[abs] || depth > maxConfigDepth {
		return fmt.Errorf("%w: include cycle at %s", ErrConfigSection, path)
	}
	seen[abs] = true

	directives, err := config.Load(abs)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return a.apply(directives, filepath.Dir(abs), seen, depth)
}

// Apply executes parsed directives. Keys outside a section, or in
// [globals], set hive values; keys of any other plain section are set
// under the section name. The command sections are:
//
//	[configs]      label = file            load another file
//	[routes]       spec = handler          Route with a named handler
//	[controllers]  Name = SPEC m, SPEC m   Controller
//	[rests]        spec = Name             Rest
//	[redirects]    spec = target[, bool]   Redirect, permanent by default
func (a *App) Apply(directives []config.Directive) error {
	return a.apply(directives, ".", make(map[string]bool), 0)
}

func (a *App) apply(directives []config.Directive, dir string, seen map[string]bool, depth int) error {
	for _, d := range directives {
		if err := a.applyOne(d, dir, seen, depth); err != nil {
			return err
		}
	}
	return nil
}

func (a *App) applyOne(d config.Directive, dir string, seen map[string]bool, depth int) error {
	wrap := func(err error) error {
		if err == nil {
			return nil
		}
		return fmt.Errorf("[%s] %s: %w", d.Section, d.Key, err)
	}

	switch strings.ToLower(d.Section) {
	case "", "globals":
		a.hive.Set(d.Key, d.Value)
		return nil

	case "configs":
		file := d.Key
		if s, ok := d.Value.(string); ok && s != "" {
			file = s
		} else if b, ok := d.Value.(bool); ok && !b {
			return nil
		}
		if !filepath.IsAbs(file) {
			file = filepath.Join(dir, file)
		}
		return wrap(a.loadConfig(file, seen, depth+1))

	case "routes":
		name := cast.ToString(d.Value)
		if name == "" {
			return wrap(ErrConfigSection)
		}
		return wrap(a.addRoute(d.Key, a.Named(name), name))

	case "controllers":
		routes, err := controllerRoutes(d.Raw)
		if err != nil {
			return wrap(err)
		}
		return wrap(a.addController(d.Key, routes))

	case "rests":
		name := cast.ToString(d.Value)
		if name == "" {
			return wrap(ErrConfigSection)
		}
		return wrap(a.addRest(d.Key, name))

	case "redirects":
		target, permanent, err := redirectTarget(d.Raw, d.Value)
		if err != nil {
			return wrap(err)
		}
		return wrap(a.addRedirect(d.Key, target, permanent))

	default:
		a.hive.Set(d.Section+"."+d.Key, d.Value)
		return nil
	}
}

// controllerRoutes parses "SPEC method, SPEC method". The last word of
// each entry is the method; the words before it form the route spec.
func controllerRoutes(raw string) (map[string]string, error) {
	routes := make(map[string]string)
	for entry := range strings.SplitSeq(raw, ",") {
		fields := strings.Fields(entry)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: %q needs a spec and a method", ErrConfigSection, strings.TrimSpace(entry))
		}
		last := len(fields) - 1
		routes[strings.Join(fields[:last], " ")] = fields[last]
	}
	return routes, nil
}

// redirectTarget reads "target" or "target, permanent". The raw text is
// preferred since alias arguments may contain commas; YAML sequences
// have no raw text and arrive as a list.
func redirectTarget(raw string, v any) (string, bool, error) {
	if raw = strings.TrimSpace(raw); raw != "" {
		target, permanent := raw, true
		if i := strings.LastIndexByte(raw, ','); i >= 0 {
			if p, err := strconv.ParseBool(strings.TrimSpace(raw[i+1:])); err == nil {
				target, permanent = strings.TrimSpace(raw[:i]), p
			}
		}
		target = strings.Trim(target, `"'`)
		if target == "" {
			return "", false, ErrConfigSection
		}
		return target, permanent, nil
	}

	list, ok := v.([]any)
	if !ok || len(list) == 0 || len(list) > 2 {
		return "", false, ErrConfigSection
	}
	target := cast.ToString(list[0])
	if target == "" {
		return "", false, ErrConfigSection
	}
	permanent := true
	if len(list) == 2 {
		p, err := cast.ToBoolE(list[1])
		if err != nil {
			return "", false, errors.Join(ErrConfigSection, err)
		}
		permanent = p
	}
	return target, permanent, nil
}
