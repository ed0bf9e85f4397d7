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

package builder

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"botwbuild/internal/botwconst"
	"botwbuild/internal/codec"
	"botwbuild/pkg/rules"
)

// Result is the summary of one completed build.
type Result struct {
	FilesChanged      int
	ArchivesRewritten int
	BytesWritten      int64
}

// Run executes the full incremental build: scan, Actor/Event/Map/Pack
// compilation, misc copy, RSTB emission, and state persistence. It loads
// its own BuildState from OutputRoot's mtimes.db if Builder.State is unset,
// and starts the RSTB from the previously emitted
// System/Resource/ResourceSizeTable.product.srsizetable if Builder.RSTB is
// unset or empty.
func (b *Builder) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var result Result

	if b.State == nil {
		state, err := LoadBuildState(filepath.Join(b.OutputRoot, "mtimes.db"), b.Config.VerifyHash)
		if err != nil {
			return result, fmt.Errorf("builder: load state: %w", err)
		}
		b.State = state
	}

	if b.RSTB == nil || b.RSTB.Len() == 0 {
		rstbPath := filepath.Join(b.OutputRoot, "System", "Resource", "ResourceSizeTable.product.srsizetable")
		if raw, err := os.ReadFile(rstbPath); err == nil {
			data, err := codec.DecompressIf(raw)
			if err != nil {
				return result, fmt.Errorf("builder: load rstb: %w", err)
			}
			prev, err := codec.UnmarshalRSTB(data, b.Config.BigEndian)
			if err != nil {
				return result, fmt.Errorf("builder: load rstb: %w", err)
			}
			b.RSTB = prev
		}
	}

	if err := os.MkdirAll(b.OutputRoot, 0o755); err != nil {
		return result, fmt.Errorf("builder: mkdir output: %w", err)
	}

	titleStaged := map[string][]byte{}

	for _, dir := range botwconst.ProcessedDirs {
		stageStart := time.Now()
		var err error
		switch dir {
		case "Actor":
			err = b.buildActors(&result, titleStaged)
		case "Event":
			err = b.buildEvents(&result, titleStaged)
		case "Map":
			err = b.copyCompileTree(dir, &result, true)
		case "Message":
			err = b.buildText(&result)
		case "Pack":
			err = b.buildPacks(dir, &result, titleStaged)
		}
		b.Metrics.ObserveStage(dir, time.Since(stageStart))
		if err != nil {
			return result, err
		}
	}

	for _, dir := range botwconst.UnprocessedDirs {
		if err := b.copyCompileTree(dir, &result, false); err != nil {
			return result, err
		}
	}

	if err := b.emitRSTB(&result); err != nil {
		return result, err
	}

	if b.Config.BigEndian {
		if err := b.emitRules(); err != nil {
			return result, err
		}
	}

	if err := b.State.Save(filepath.Join(b.OutputRoot, "mtimes.db")); err != nil {
		return result, err
	}

	if b.History != nil {
		_ = b.History.BeginRun(ctx, b.RunID, start)
		_ = b.History.FinishRun(ctx, b.RunID, time.Now(), result.FilesChanged, result.ArchivesRewritten, nil)
	}

	return result, nil
}

// copyCompileTree walks a single top-level source directory, compiling
// recognized text documents and copying everything else verbatim into the
// matching output path, skipping files whose mtime hasn't changed.
func (b *Builder) copyCompileTree(dir string, result *Result, updateRSTB bool) error {
	root := filepath.Join(b.SourceRoot, dir)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil
	}

	type job struct {
		relPath string
		absPath string
	}
	var jobs []job

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(b.SourceRoot, path)
		if err != nil {
			return err
		}
		jobs = append(jobs, job{relPath: filepath.ToSlash(rel), absPath: path})
		return nil
	})
	if err != nil {
		return fmt.Errorf("builder: walk %s: %w", dir, err)
	}

	var (
		wg    sync.WaitGroup
		errs  = newFirstError()
		mu    sync.Mutex
		sem   = make(chan struct{}, workerCount())
	)

	for _, j := range jobs {
		j := j
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			info, err := os.Stat(j.absPath)
			if err != nil {
				errs.Send(fmt.Errorf("builder: stat %s: %w", j.relPath, err))
				return
			}
			mtime := info.ModTime().Unix()

			data, err := os.ReadFile(j.absPath)
			if err != nil {
				errs.Send(fmt.Errorf("builder: read %s: %w", j.relPath, err))
				return
			}

			if !b.State.Changed(j.relPath, mtime, data) {
				return
			}

			compiled, outRel, err := b.compileOne(j.relPath, data)
			if err != nil {
				errs.Send(fmt.Errorf("builder: compile %s: %w", j.relPath, err))
				return
			}

			outPath := filepath.Join(b.OutputRoot, filepath.FromSlash(outRel))
			if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
				errs.Send(err)
				return
			}
			if err := os.WriteFile(outPath, compiled, 0o644); err != nil {
				errs.Send(err)
				return
			}

			mu.Lock()
			result.FilesChanged++
			result.BytesWritten += int64(len(compiled))
			mu.Unlock()

			if updateRSTB {
				canonical := Canonicalize(outRel)
				_, ext := StemAndExt(canonical)
				if !botwconst.ExcludeRSTB[ext] {
					size, ok := b.Estimator.Estimate(canonical, compiled)
					b.RSTB.Update(canonical, size, ok, b.Stock)
				}
			}
		}()
	}
	wg.Wait()

	return errs.Err()
}

// compileOne compiles or copies a single source file, returning the bytes
// to write and the output-relative path (which may carry a different
// extension than the source, e.g. ".bxml.yml" -> ".bxml").
func (b *Builder) compileOne(relPath string, data []byte) (compiled []byte, outRel string, err error) {
	stem, ext := StemAndExt(relPath)
	_ = stem

	if ext == "yml" {
		base := strings.TrimSuffix(relPath, ".yml")
		_, baseExt := StemAndExt(base)
		kind := codec.Sniff(data, baseExt)
		missed := false
		compiled, err = b.Cache.GetOrCompile(relPath, func() ([]byte, error) {
			missed = true
			if b.Metrics != nil {
				b.Metrics.CacheMiss()
			}
			return codec.CompileText(data, kind)
		})
		if err != nil {
			return nil, "", err
		}
		if b.Metrics != nil && !missed {
			b.Metrics.CacheHit()
		}
		outRel = base
	} else {
		compiled = data
		outRel = relPath
	}

	if codec.ShouldCompress(ext, compiled) {
		compiled = codec.Yaz0Compress(compiled)
	}
	return compiled, outRel, nil
}

// buildActors resolves every Actor/ActorLink/*.bxml.yml document,
// compiles its referenced files through the Compile Cache, assembles an
// .sbactorpack per actor, and routes title actors into the TitleBG.pack
// staging set instead of a loose Actor/Pack/ file.
func (b *Builder) buildActors(result *Result, titleStaged map[string][]byte) error {
	linkDir := filepath.Join(b.SourceRoot, "Actor", "ActorLink")
	entries, err := os.ReadDir(linkDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("builder: read Actor/ActorLink: %w", err)
	}

	titleSet := map[string]bool{}
	for _, n := range b.titleActors() {
		titleSet[n] = true
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".bxml.yml") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".bxml.yml")

		data, err := os.ReadFile(filepath.Join(linkDir, e.Name()))
		if err != nil {
			return fmt.Errorf("builder: read actor link %s: %w", name, err)
		}
		doc, err := codec.ParseAampText(data)
		if err != nil {
			return fmt.Errorf("builder: parse actor link %s: %w", name, err)
		}

		readFile := func(p string) ([]byte, error) {
			return os.ReadFile(filepath.Join(b.SourceRoot, "Actor", p))
		}

		desc, warnings, err := ResolveActor(name, doc, readFile)
		if err != nil {
			return fmt.Errorf("builder: resolve actor %s: %w", name, err)
		}
		for _, w := range warnings {
			if werr := b.Warn("%s", w); werr != nil {
				return werr
			}
		}

		archive := codec.NewSarcFile(b.Config.BigEndian)
		linkBin := doc.MarshalBinary()
		archive.Set("ActorLink/"+name+".bxml", linkBin)

		for _, f := range desc.Files {
			raw, err := readFile(f)
			if err != nil {
				if werr := b.Warn("actor %s: could not read %s: %v", name, f, err); werr != nil {
					return werr
				}
				continue
			}
			compiled, outRel, err := b.compileOne(f, raw)
			if err != nil {
				return fmt.Errorf("builder: compile actor %s member %s: %w", name, f, err)
			}
			archive.Set(outRel, compiled)
		}

		for _, f := range desc.RawFiles {
			raw, err := os.ReadFile(filepath.Join(b.SourceRoot, f))
			if err != nil {
				if !strings.HasPrefix(f, "Physics/") {
					return fmt.Errorf("builder: actor %s: missing required member %s: %w", name, f, err)
				}
				if werr := b.Warn("actor %s: could not read %s: %v", name, f, err); werr != nil {
					return werr
				}
				continue
			}
			archive.Set(f, raw)
		}

		archiveData := archive.Marshal()
		result.ArchivesRewritten++
		result.BytesWritten += int64(len(archiveData))

		canonical := "Actor/Pack/" + name + ".bactorpack"
		diskName := name + ".sbactorpack"

		if titleSet[name] {
			titleStaged[titleBGStagingPrefix+"Actor/Pack/"+diskName] = archiveData
			if !botwconst.ExcludeRSTB["bactorpack"] {
				size, ok := b.Estimator.Estimate(canonical, archiveData)
				b.RSTB.Update(canonical, size, ok, b.Stock)
			}
			continue
		}

		outPath := filepath.Join(b.OutputRoot, "Actor", "Pack", diskName)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, archiveData, 0o644); err != nil {
			return err
		}

		if !botwconst.ExcludeRSTB["bactorpack"] {
			size, ok := b.Estimator.Estimate(canonical, archiveData)
			b.RSTB.Update(canonical, size, ok, b.Stock)
		}
	}
	return nil
}

// buildEvents resolves every Event/EventInfo/*.info.yml document into its
// sub-events, assembles a per-event Event/<name>.sbeventpack archive for
// every event outside the title/nested sets, and writes the combined
// Event/EventInfo.product.sbyml fragment map.
func (b *Builder) buildEvents(result *Result, titleStaged map[string][]byte) error {
	infoDir := filepath.Join(b.SourceRoot, "Event", "EventInfo")
	entries, err := os.ReadDir(infoDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("builder: read Event/EventInfo: %w", err)
	}

	skip := map[string]bool{}
	for _, n := range botwconst.NestedEvents {
		skip[n] = true
	}
	for _, n := range b.titleEvents() {
		skip[n] = true
	}

	var descriptors []EventDescriptor
	byEvent := map[string][]EventDescriptor{}
	var eventOrder []string
	infoChanged := false

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".info.yml") {
			continue
		}
		eventName := strings.TrimSuffix(e.Name(), ".info.yml")
		relPath := filepath.ToSlash(filepath.Join("Event", "EventInfo", e.Name()))
		absPath := filepath.Join(infoDir, e.Name())

		stat, err := os.Stat(absPath)
		if err != nil {
			return fmt.Errorf("builder: stat event info %s: %w", eventName, err)
		}
		data, err := os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("builder: read event info %s: %w", eventName, err)
		}
		if b.State.Changed(relPath, stat.ModTime().Unix(), data) {
			infoChanged = true
		}

		doc, err := codec.ParseBymlText(data)
		if err != nil {
			return fmt.Errorf("builder: parse event info %s: %w", eventName, err)
		}
		if !doc.IsMap() {
			continue
		}

		if _, seen := byEvent[eventName]; !seen {
			eventOrder = append(eventOrder, eventName)
		}
		for subKey, node := range doc.Map {
			d := ResolveEvent(eventName, subKey, node)
			descriptors = append(descriptors, d)
			byEvent[eventName] = append(byEvent[eventName], d)
		}
	}

	sort.Strings(eventOrder)
	for _, eventName := range eventOrder {
		if skip[eventName] {
			continue
		}
		if err := b.buildEventArchive(eventName, byEvent[eventName], infoChanged, result); err != nil {
			return err
		}
	}

	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].MergedKey < descriptors[j].MergedKey })

	infoRoot := BuildEventInfo(descriptors)
	infoBin := codec.MarshalBymlBinary(infoRoot)
	outPath := filepath.Join(b.OutputRoot, "Event", "EventInfo.product.sbyml")

	if !infoChanged {
		// Bootup.pack's staged-injection fallback still needs the bytes
		// even on a run where nothing under Event/EventInfo changed.
		if existing, err := os.ReadFile(outPath); err == nil {
			titleStaged["Event/EventInfo.product.sbyml"] = existing
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, infoBin, 0o644); err != nil {
		return err
	}
	result.FilesChanged++
	result.BytesWritten += int64(len(infoBin))

	canonical := "Event/EventInfo.product.byml"
	if !botwconst.ExcludeRSTB["byml"] {
		size, ok := b.Estimator.Estimate(canonical, infoBin)
		b.RSTB.Update(canonical, size, ok, b.Stock)
	}

	titleStaged["Event/EventInfo.product.sbyml"] = infoBin
	return nil
}

// buildEventArchive assembles one Event/<name>.sbeventpack from every
// sub-event descriptor belonging to name. It applies the emit guard (a
// non-empty member set, at least one changed member or info file, and no
// missing required primary EventFlow file) before writing.
func (b *Builder) buildEventArchive(eventName string, descs []EventDescriptor, infoChanged bool, result *Result) error {
	compiledSeen := map[string]bool{}
	rawSeen := map[string]bool{}
	var compiled, raw []string
	for _, d := range descs {
		for _, f := range d.Files {
			if !compiledSeen[f] {
				compiledSeen[f] = true
				compiled = append(compiled, f)
			}
		}
		for _, f := range d.RawFiles {
			if !rawSeen[f] {
				rawSeen[f] = true
				raw = append(raw, f)
			}
		}
	}
	if len(compiled) == 0 && len(raw) == 0 {
		return nil
	}
	sort.Strings(compiled)
	sort.Strings(raw)

	type member struct {
		path    string
		compile bool
	}
	members := make([]member, 0, len(compiled)+len(raw))
	for _, f := range compiled {
		members = append(members, member{f, true})
	}
	for _, f := range raw {
		members = append(members, member{f, false})
	}

	anyChanged := infoChanged
	missingPrimary := false
	archive := codec.NewSarcFile(b.Config.BigEndian)

	for _, m := range members {
		absPath := filepath.Join(b.SourceRoot, filepath.FromSlash(m.path))
		stat, statErr := os.Stat(absPath)
		if statErr != nil {
			if !m.compile && isPrimaryEventFile(m.path) {
				missingPrimary = true
				continue
			}
			if werr := b.Warn("event %s: could not read %s: %v", eventName, m.path, statErr); werr != nil {
				return werr
			}
			continue
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			return fmt.Errorf("builder: read event %s member %s: %w", eventName, m.path, err)
		}
		if b.State.Changed(m.path, stat.ModTime().Unix(), data) {
			anyChanged = true
		}

		if m.compile {
			compiledData, outRel, err := b.compileOne(m.path, data)
			if err != nil {
				return fmt.Errorf("builder: compile event %s member %s: %w", eventName, m.path, err)
			}
			archive.Set(outRel, compiledData)
		} else {
			archive.Set(m.path, data)
		}
	}

	if missingPrimary || !anyChanged {
		return nil
	}

	archiveData := archive.Marshal()
	outPath := filepath.Join(b.OutputRoot, "Event", eventName+".sbeventpack")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, archiveData, 0o644); err != nil {
		return err
	}
	result.ArchivesRewritten++
	result.BytesWritten += int64(len(archiveData))

	canonical := "Event/" + eventName + ".beventpack"
	if !botwconst.ExcludeRSTB["beventpack"] {
		size, ok := b.Estimator.Estimate(canonical, archiveData)
		b.RSTB.Update(canonical, size, ok, b.Stock)
	}
	return nil
}

// buildText compiles every Message/<lang>/*.msyt bundle into a
// Bootup_<lang>.pack boot-language bundle and writes it alongside the
// other top-level Pack/ outputs.
func (b *Builder) buildText(result *Result) error {
	root := filepath.Join(b.SourceRoot, "Message")
	langs, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("builder: read Message: %w", err)
	}

	for _, langEntry := range langs {
		if !langEntry.IsDir() {
			continue
		}
		lang := langEntry.Name()
		langDir := filepath.Join(root, lang)

		files, err := os.ReadDir(langDir)
		if err != nil {
			return fmt.Errorf("builder: read Message/%s: %w", lang, err)
		}

		msyts := map[string]*codec.MsytDocument{}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".msyt") {
				continue
			}
			stem := strings.TrimSuffix(f.Name(), ".msyt")
			data, err := os.ReadFile(filepath.Join(langDir, f.Name()))
			if err != nil {
				return fmt.Errorf("builder: read Message/%s/%s: %w", lang, f.Name(), err)
			}
			doc, err := codec.ParseMsytText(data)
			if err != nil {
				return fmt.Errorf("builder: parse Message/%s/%s: %w", lang, f.Name(), err)
			}
			msyts[stem] = doc
		}
		if len(msyts) == 0 {
			continue
		}

		bundle, innerSsarc, err := BuildLanguageBundle(lang, msyts, b.Config.BigEndian)
		if err != nil {
			return fmt.Errorf("builder: build language bundle %s: %w", lang, err)
		}

		outPath := filepath.Join(b.OutputRoot, "Pack", LanguageBundleName(lang))
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, bundle, 0o644); err != nil {
			return err
		}
		result.ArchivesRewritten++
		result.BytesWritten += int64(len(bundle))

		// The RSTB tracks the inner Message archive under its decompressed
		// canonical name, not the outer Bootup_<lang>.pack wrapper (packs
		// are excluded from the RSTB entirely).
		canonical := fmt.Sprintf("Message/Msg_%s.product.sarc", lang)
		if !botwconst.ExcludeRSTB["sarc"] {
			size, ok := b.Estimator.Estimate(canonical, innerSsarc)
			b.RSTB.Update(canonical, size, ok, b.Stock)
		}
	}
	return nil
}

// buildPacks walks Pack/ and assembles each top-level entry as its own
// archive via BuildPack, skipping any directory whose tree carries no
// changed file. TitleBG and Bootup are always rebuilt since their content
// depends on titleStaged, which the Actor/Event stages populate from
// files outside Pack/ itself and so isn't reflected by Pack/'s own
// mtimes. A rebuilt pack merges into its prior output archive (if any) so
// entries whose source went away are still carried forward.
func (b *Builder) buildPacks(dir string, result *Result, titleStaged map[string][]byte) error {
	root := filepath.Join(b.SourceRoot, dir)
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("builder: read %s: %w", dir, err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		relPrefix := filepath.ToSlash(filepath.Join(dir, name))
		tree, changed, err := loadSourceDir(b, filepath.Join(root, name), relPrefix)
		if err != nil {
			return fmt.Errorf("builder: load pack tree %s: %w", name, err)
		}

		alwaysRebuild := name == "TitleBG" || name == "Bootup"
		if !changed && !alwaysRebuild {
			continue
		}

		writer, err := BuildPack(name, tree, b.Config.BigEndian, titleStaged)
		if err != nil {
			return fmt.Errorf("builder: build pack %s: %w", name, err)
		}

		outPath := filepath.Join(b.OutputRoot, dir, name+".pack")
		if existing, err := os.ReadFile(outPath); err == nil {
			if existingSarc, err := codec.UnmarshalSarc(existing); err == nil {
				writer.MergeFrom(existingSarc)
			}
		}

		data := writer.Bytes()
		result.ArchivesRewritten++
		result.BytesWritten += int64(len(data))

		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, data, 0o644); err != nil {
			return err
		}

		canonical := dir + "/" + name + ".pack"
		if !botwconst.ExcludeRSTB["pack"] {
			size, ok := b.Estimator.Estimate(canonical, data)
			b.RSTB.Update(canonical, size, ok, b.Stock)
		}
	}
	return nil
}

// loadSourceDir walks path into a SourceDir tree, reporting via changed
// whether any descendant file is new or has a different mtime than the
// last recorded build (per b.State.Changed), so buildPacks can skip
// rebuilding archives with no modified source.
func loadSourceDir(b *Builder, path, relPrefix string) (tree *SourceDir, changed bool, err error) {
	dir := NewSourceDir(filepath.Base(path))
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, false, err
	}
	for _, e := range entries {
		childRel := relPrefix + "/" + e.Name()
		if e.IsDir() {
			child, childChanged, err := loadSourceDir(b, filepath.Join(path, e.Name()), childRel)
			if err != nil {
				return nil, false, err
			}
			dir.Dirs[e.Name()] = child
			if childChanged {
				changed = true
			}
			continue
		}
		if e.Name() == dotSlashMarker || strings.HasPrefix(e.Name(), dotAlignMarker) {
			dir.Sentinels = append(dir.Sentinels, e.Name())
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, false, err
		}
		data, err := os.ReadFile(filepath.Join(path, e.Name()))
		if err != nil {
			return nil, false, err
		}
		if b.State.Changed(childRel, info.ModTime().Unix(), data) {
			changed = true
		}

		compiled, outRel, err := b.compileOne(childRel, data)
		if err != nil {
			return nil, false, fmt.Errorf("builder: compile %s: %w", childRel, err)
		}
		dir.Files[filepath.Base(outRel)] = compiled
	}
	return dir, changed, nil
}

func (b *Builder) emitRSTB(result *Result) error {
	data := b.RSTB.Marshal()
	outPath := filepath.Join(b.OutputRoot, "System", "Resource", "ResourceSizeTable.product.srsizetable")
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("builder: mkdir for rstb: %w", err)
	}
	compressed := codec.Yaz0Compress(data)
	if err := os.WriteFile(outPath, compressed, 0o644); err != nil {
		return fmt.Errorf("builder: write rstb: %w", err)
	}
	result.BytesWritten += int64(len(compressed))
	if b.Metrics != nil {
		b.Metrics.SetRSTBEntries(b.RSTB.Len())
	}
	return nil
}

func (b *Builder) emitRules() error {
	path := filepath.Join(b.OutputRoot, "rules.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("builder: create rules.txt: %w", err)
	}
	defer f.Close()
	return rules.Write(f, b.Config.Meta)
}

func (b *Builder) titleActors() []string {
	if len(b.TitleActors) > 0 {
		return b.TitleActors
	}
	return botwconst.TitleActors
}

func (b *Builder) titleEvents() []string {
	if len(b.TitleEvents) > 0 {
		return b.TitleEvents
	}
	return botwconst.TitleEvents
}

func workerCount() int {
	n := 8
	return n
}
