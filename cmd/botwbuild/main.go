// Botwbuild is an incremental mod build pipeline for The Legend of Zelda: Breath of the Wild.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"context"
	"flag"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"botwbuild/internal/botwconst"
	"botwbuild/internal/buildlog"
	"botwbuild/internal/builder"
	"botwbuild/internal/cachedb"
	"botwbuild/internal/codec"
	"botwbuild/internal/progress"
	"botwbuild/pkg/config"
)

func main() {
	if len(os.Args) < 2 {
		fatalf("usage: botwbuild <build|init|unbuild|add|history|serve> [flags]")
	}

	switch os.Args[1] {
	case "build":
		runBuild(os.Args[2:])
	case "init", "unbuild":
		runUnbuild(os.Args[2:])
	case "add":
		runAdd(os.Args[2:])
	case "history":
		runHistory(os.Args[2:])
	case "serve":
		runServe(os.Args[2:])
	default:
		fatalf("unknown subcommand %q", os.Args[1])
	}
}

func loadConfig(fs *flag.FlagSet, bigEndian, ignoreWarnings, hardWarnings *bool, source, output *string) config.Config {
	cfg := config.Default()

	var err error
	cfg, err = config.LoadFile(cfg, "config.yml")
	if err != nil {
		fatalf("load config.yml: %v", err)
	}
	cfg, err = config.LoadFromEnv(cfg)
	if err != nil {
		fatalf("load env config: %v", err)
	}

	if isSet(fs, "be") {
		cfg.BigEndian = *bigEndian
	}
	if ignoreWarnings != nil && isSet(fs, "ignore-warnings") {
		cfg.IgnoreWarnings = *ignoreWarnings
	}
	if hardWarnings != nil && isSet(fs, "hard-warnings") {
		cfg.HardWarnings = *hardWarnings
	}
	if source != nil && fs.NArg() > 0 {
		cfg.Source = *source
	}
	if output != nil && isSet(fs, "o") {
		cfg.Output = *output
	}

	if err := cfg.Validate(); err != nil {
		fatalf("%v", err)
	}
	return cfg
}

func isSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func runBuild(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	bigEndian := fs.Bool("be", false, "target big-endian platform (Wii U)")
	ignoreWarnings := fs.Bool("ignore-warnings", false, "suppress non-fatal build warnings")
	hardWarnings := fs.Bool("hard-warnings", false, "promote every build warning to a fatal error")
	titleActors := fs.String("title-actors", "", "comma-separated list of actor names to inline into TitleBG.pack, overriding the built-in set")
	output := fs.String("o", "build", "output directory")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	metaName := fs.String("name", "", "mod name, used to derive rules.txt's path entry")
	fs.Parse(args)

	source := "."
	if fs.NArg() > 0 {
		source = fs.Arg(0)
	}

	if *ignoreWarnings && *hardWarnings {
		fatalf("build: --ignore-warnings and --hard-warnings are mutually exclusive")
	}

	cfg := loadConfig(fs, bigEndian, ignoreWarnings, hardWarnings, &source, output)
	if *metaName != "" {
		cfg.Meta["name"] = *metaName
	}

	logger := buildlog.New(*logLevel)
	slog.SetDefault(logger)

	b := builder.New(cfg, logger)
	b.Metrics = builder.NewMetrics()
	if *titleActors != "" {
		b.TitleActors = strings.Split(*titleActors, ",")
	}

	ctx := context.Background()
	if history, err := openHistory(ctx, cfg.Output); err == nil {
		b.History = history
		defer history.Close()
	} else {
		logger.Warn("build history ledger unavailable", "error", err)
	}

	reporter := progress.NewReporter(os.Stdout)
	result, err := b.Run(ctx)
	if err != nil {
		reporter.Failed("build: %v", err)
		os.Exit(1)
	}

	reporter.Summary(result.FilesChanged, result.ArchivesRewritten, result.BytesWritten)
}

func runUnbuild(args []string) {
	fs := flag.NewFlagSet("unbuild", flag.ExitOnError)
	bigEndian := fs.Bool("be", false, "source mod targets a big-endian platform (Wii U)")
	source := fs.String("source", "", "path to the built mod to decompose (a directory tree of .pack/.sarc files)")
	writeConfig := fs.Bool("config", false, "write a starter config.yml alongside the unbuilt source tree")
	fs.Parse(args)

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}
	if *source == "" {
		fatalf("unbuild: --source is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatalf("unbuild: mkdir %s: %v", dir, err)
	}

	err := filepath.WalkDir(*source, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(*source, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}

		for _, f := range unbuildFile(rel, data, *bigEndian) {
			outPath := filepath.Join(dir, filepath.FromSlash(f.Path))
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", outPath, err)
			}
			if err := os.WriteFile(outPath, f.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
		}
		return nil
	})
	if err != nil {
		fatalf("unbuild: %v", err)
	}

	if *writeConfig {
		cfgPath := filepath.Join(dir, "config.yml")
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			stub := "meta:\n  name: \"\"\nflags: []\noptions: {}\n"
			if err := os.WriteFile(cfgPath, []byte(stub), 0o644); err != nil {
				fatalf("unbuild: write config.yml: %v", err)
			}
		}
	}

	fmt.Printf("unbuild: wrote source tree to %s\n", dir)
}

// unbuildFile decides how one file from a built mod decomposes: an archive
// extension recurses through builder.UnbuildArchive and its contents land
// under the archive's own directory (flattened one level up, into the
// directory containing "Pack/", for root-pack extensions); a loose
// compiled AAMP/BYML document decodes straight to text; anything else
// (already-text files, unprocessed-directory assets) copies through
// verbatim at its original relative path.
func unbuildFile(rel string, data []byte, bigEndian bool) []builder.UnbuiltFile {
	dir, base := path.Split(rel)
	dir = strings.TrimSuffix(dir, "/")
	_, ext := builder.StemAndExt(base)

	if botwconst.IsArchiveExt(ext) {
		files, err := builder.UnbuildArchive(base, data, bigEndian)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unbuild: %s: %v (copied verbatim)\n", rel, err)
			return []builder.UnbuiltFile{{Path: rel, Data: data}}
		}

		var prefix string
		if sub := builder.UnbuildArchiveName(base); sub != "" {
			prefix = joinRel(dir, sub)
		} else {
			prefix = flattenRootPackDir(dir)
		}
		if prefix != "" {
			for i := range files {
				files[i].Path = prefix + "/" + files[i].Path
			}
		}
		return files
	}

	switch base {
	case "ActorInfo.product.sbyml":
		if root, err := codec.UnmarshalBymlBinary(data); err == nil {
			if docs, err := builder.UnbuildActorInfo(root); err == nil {
				return prefixDocs(joinRel(dir, "ActorInfo"), docs)
			}
		}
	case "EventInfo.product.sbyml":
		if root, err := codec.UnmarshalBymlBinary(data); err == nil {
			if docs, err := builder.UnbuildEventInfo(root); err == nil {
				return prefixDocs(joinRel(dir, "EventInfo"), docs)
			}
		}
	}

	switch codec.SniffBinary(data) {
	case codec.KindAamp:
		if doc, err := codec.UnmarshalAampBinary(data); err == nil {
			if text, terr := doc.MarshalText(); terr == nil {
				return []builder.UnbuiltFile{{Path: rel + ".yml", Data: text}}
			}
		}
	case codec.KindByml:
		if node, err := codec.UnmarshalBymlBinary(data); err == nil {
			if text, terr := codec.MarshalBymlText(node); terr == nil {
				return []builder.UnbuiltFile{{Path: rel + ".yml", Data: text}}
			}
		}
	}

	return []builder.UnbuiltFile{{Path: rel, Data: data}}
}

func prefixDocs(dir string, docs map[string][]byte) []builder.UnbuiltFile {
	out := make([]builder.UnbuiltFile, 0, len(docs))
	for name, data := range docs {
		out = append(out, builder.UnbuiltFile{Path: dir + "/" + name, Data: data})
	}
	return out
}

func joinRel(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// flattenRootPackDir strips a trailing "Pack" path segment, the directory
// a root-pack archive (sbactorpack/sbeventpack) lives in, so its contents
// land in the content root its own members were built relative to (e.g.
// "Actor/Pack" -> "Actor", matching buildActors' "ActorLink/<name>.bxml"
// member names).
func flattenRootPackDir(dir string) string {
	if dir == "Pack" {
		return ""
	}
	return strings.TrimSuffix(dir, "/Pack")
}

func runAdd(args []string) {
	if len(args) < 2 {
		fatalf("usage: botwbuild add actor|event|map|pack <name>")
	}
	kind, name := args[0], args[1]

	var relPath string
	var stub []byte
	switch kind {
	case "actor":
		relPath = filepath.Join("Actor", "ActorLink", name+".bxml.yml")
		stub = []byte("!io_version: 7\nname: " + name + "\nobjects:\n  LinkTarget:\n    name: LinkTarget\n    params: {}\n")
	case "event":
		relPath = filepath.Join("Event", "EventInfo", name+".info.yml")
		stub = []byte(name + ":\n  subfile: []\n")
	case "map":
		relPath = filepath.Join("Map", "MainField", name+".byml.yml")
		stub = []byte("{}\n")
	case "pack":
		relPath = filepath.Join("Pack", name, ".slash")
		stub = []byte("")
	default:
		fatalf("add: unknown kind %q (want actor, event, map, or pack)", kind)
	}

	if err := os.MkdirAll(filepath.Dir(relPath), 0o755); err != nil {
		fatalf("add: mkdir: %v", err)
	}
	if _, err := os.Stat(relPath); err == nil {
		fatalf("add: %s already exists", relPath)
	}
	if err := os.WriteFile(relPath, stub, 0o644); err != nil {
		fatalf("add: write %s: %v", relPath, err)
	}

	fmt.Printf("add: created %s\n", relPath)
}

func runHistory(args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	output := fs.String("o", "build", "output directory holding the build history ledger")
	limit := fs.Int("n", 10, "number of recent runs to show")
	fs.Parse(args)

	ctx := context.Background()
	db, err := openHistory(ctx, *output)
	if err != nil {
		fatalf("history: %v", err)
	}
	defer db.Close()

	runs, err := db.RecentRuns(ctx, *limit)
	if err != nil {
		fatalf("history: %v", err)
	}
	if len(runs) == 0 {
		fmt.Println("history: no recorded build runs")
		return
	}
	for _, r := range runs {
		status := "ok"
		if !r.Succeeded {
			status = "failed: " + r.Error
		}
		fmt.Printf("%s  %s  files=%d archives=%d  %s\n",
			r.StartedAt.Format(time.RFC3339), r.ID, r.FilesChanged, r.ArchivesRewritten, status)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("metrics-addr", ":9090", "address to expose Prometheus metrics on")
	fs.Parse(args)

	m := builder.NewMetrics()
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	slog.Info("serving build metrics", "addr", *addr)
	if err := http.ListenAndServe(*addr, mux); err != nil {
		fatalf("serve: %v", err)
	}
}

func openHistory(ctx context.Context, outputDir string) (*cachedb.DB, error) {
	return cachedb.Open(ctx, filepath.Join(outputDir, "history.db"))
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "botwbuild: "+format+"\n", args...)
	os.Exit(1)
}
