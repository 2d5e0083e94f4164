// Package loader builds the full module set for a DataScript program: the
// main file plus every module it transitively imports, found via an
// ordered search path and loaded breadth-first.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/maruel/natural"

	"github.com/devbrain/datascript/internal/ast"
)

// ParseFunc parses a single file's contents into an *ast.Module. The
// loader is parser-agnostic; callers wire in internal/parser's New +
// ParseModule (or a test double) through this hook.
type ParseFunc func(file string, contents []byte) (*ast.Module, error)

// LoadedModule pairs a parsed module with the canonical path it was
// loaded from.
type LoadedModule struct {
	FilePath    string
	PackageName string
	Module      *ast.Module
}

// ModuleSet is the main module plus every module it transitively imports,
// in load (breadth-first) order, with a package-name index for
// multi-segment qualified lookups in Phase 2.
type ModuleSet struct {
	Main         LoadedModule
	Imported     []LoadedModule
	PackageIndex map[string]int // package name -> index into Imported
}

// ImportNotFoundError reports every search path an unresolved import was
// checked against, mirroring the upstream compiler's diagnostic shape.
type ImportNotFoundError struct {
	Name    string
	Checked []string
}

func (e *ImportNotFoundError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "import %q not found. Searched in:\n", e.Name)
	for _, p := range e.Checked {
		fmt.Fprintf(&sb, "  - %s\n", p)
	}
	return sb.String()
}

// SearchPaths builds the ordered directory list imports are resolved
// against: the main file's directory, then caller-supplied paths, then
// the working directory (if not already present), then each colon-
// separated entry of DATASCRIPT_PATH.
func SearchPaths(mainFile string, userPaths []string) []string {
	var paths []string

	if dir := filepath.Dir(mainFile); dir != "" {
		paths = append(paths, dir)
	} else {
		paths = append(paths, ".")
	}

	paths = append(paths, userPaths...)

	if cwd, err := os.Getwd(); err == nil && !contains(paths, cwd) {
		paths = append(paths, cwd)
	}

	if env := os.Getenv("DATASCRIPT_PATH"); env != "" {
		for _, p := range strings.Split(env, ":") {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	return paths
}

func contains(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// packageToPath turns ["foo","bar","baz"] into "foo/bar/baz.ds".
func packageToPath(parts []string) string {
	return filepath.Join(parts...) + ".ds"
}

func packageToString(parts []string) string {
	return strings.Join(parts, ".")
}

// resolveImport probes each search path in order for <searchDir>/a/b/c.ds,
// returning the canonical path of the first match and the full list of
// paths actually probed (used to build ImportNotFoundError).
func resolveImport(parts, searchPaths []string) (found string, checked []string) {
	rel := packageToPath(parts)
	for _, dir := range searchPaths {
		candidate := filepath.Join(dir, rel)
		checked = append(checked, candidate)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs, checked
			}
			return candidate, checked
		}
	}
	return "", checked
}

// resolveWildcardImport finds the first search root containing the
// directory named by parts (minus the trailing "*") and returns every
// ".ds" file directly inside it (non-recursive), in natural sort order
// for deterministic module-set construction across platforms.
func resolveWildcardImport(parts, searchPaths []string) []string {
	if len(parts) == 0 {
		return nil
	}
	dirRel := filepath.Join(parts...)

	for _, dir := range searchPaths {
		candidateDir := filepath.Join(dir, dirRel)
		info, err := os.Stat(candidateDir)
		if err != nil || !info.IsDir() {
			continue
		}

		entries, err := os.ReadDir(candidateDir)
		if err != nil {
			return nil
		}
		var names []string
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".ds") {
				names = append(names, e.Name())
			}
		}
		sortNatural(names)

		out := make([]string, 0, len(names))
		for _, name := range names {
			abs, err := filepath.Abs(filepath.Join(candidateDir, name))
			if err != nil {
				abs = filepath.Join(candidateDir, name)
			}
			out = append(out, abs)
		}
		return out // first matching root wins; never search further roots
	}
	return nil
}

func sortNatural(ss []string) {
	natural.Sort(ss)
}

// Load builds the full ModuleSet for mainFile: parses it, then performs a
// breadth-first traversal of its import graph using searchPaths,
// deduplicating by canonical file path so a module reachable via two
// import paths is only parsed and counted once.
func Load(mainFile string, userPaths []string, parse ParseFunc) (*ModuleSet, error) {
	searchPaths := SearchPaths(mainFile, userPaths)

	mainAbs, err := filepath.Abs(mainFile)
	if err != nil {
		mainAbs = mainFile
	}
	mainContents, err := os.ReadFile(mainAbs)
	if err != nil {
		return nil, fmt.Errorf("reading main file: %w", err)
	}
	mainModule, err := parse(mainAbs, mainContents)
	if err != nil {
		return nil, err
	}

	set := &ModuleSet{
		Main: LoadedModule{
			FilePath:    mainAbs,
			PackageName: mainModule.PackageName(),
			Module:      mainModule,
		},
		PackageIndex: make(map[string]int),
	}

	seen := map[string]bool{mainAbs: true}

	const mainSentinel = -1
	queue := []int{mainSentinel}

	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]

		var current *ast.Module
		if idx == mainSentinel {
			current = set.Main.Module
		} else {
			current = set.Imported[idx].Module
		}

		for _, imp := range current.Imports {
			if imp.IsWildcard {
				files := resolveWildcardImport(imp.Parts, searchPaths)
				for _, fp := range files {
					if seen[fp] {
						continue
					}
					seen[fp] = true
					lm, err := loadOne(fp, parse)
					if err != nil {
						return nil, err
					}
					if lm.PackageName != "" {
						set.PackageIndex[lm.PackageName] = len(set.Imported)
					}
					set.Imported = append(set.Imported, lm)
					queue = append(queue, len(set.Imported)-1)
				}
				continue
			}

			fp, checked := resolveImport(imp.Parts, searchPaths)
			if fp == "" {
				return nil, &ImportNotFoundError{Name: packageToString(imp.Parts), Checked: checked}
			}
			if seen[fp] {
				continue
			}
			seen[fp] = true

			lm, err := loadOne(fp, parse)
			if err != nil {
				return nil, err
			}
			set.PackageIndex[packageToString(imp.Parts)] = len(set.Imported)
			set.Imported = append(set.Imported, lm)
			queue = append(queue, len(set.Imported)-1)
		}
	}

	return set, nil
}

func loadOne(path string, parse ParseFunc) (LoadedModule, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return LoadedModule{}, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := parse(path, contents)
	if err != nil {
		return LoadedModule{}, err
	}
	return LoadedModule{FilePath: path, PackageName: m.PackageName(), Module: m}, nil
}

// AllModules returns the main module followed by every imported module,
// in load order — the order later pipeline phases iterate in to keep
// diagnostic ordering deterministic before the final by-position sort.
func (s *ModuleSet) AllModules() []LoadedModule {
	out := make([]LoadedModule, 0, 1+len(s.Imported))
	out = append(out, s.Main)
	out = append(out, s.Imported...)
	return out
}
