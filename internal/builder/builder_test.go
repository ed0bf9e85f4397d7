package builder

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"botwbuild/internal/codec"
	"botwbuild/pkg/config"
)

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Actor/ActorLink/Dog.bxml.yml", "Actor/ActorLink/Dog.bxml"},
		{"Pack/TitleBG/Actor/Pack/Dog.sbactorpack/ActorLink/Dog.bxml", "ActorLink/Dog.bxml"},
		{"Map/MainField/A-1/A-1_Static.smubin", "Map/MainField/A-1/A-1_Static.smubin"},
	}
	for _, tc := range cases {
		if got := Canonicalize(tc.in); got != tc.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	in := "Actor/ActorLink/Dog.bxml.yml"
	once := Canonicalize(in)
	twice := Canonicalize(once)
	if once != twice {
		t.Fatalf("Canonicalize is not idempotent: %q then %q", once, twice)
	}
}

func TestBuildStateChangedMtimeOnly(t *testing.T) {
	s := NewBuildState(false)
	if !s.Changed("a.txt", 100, nil) {
		t.Fatal("first sight of a path must be changed")
	}
	if s.Changed("a.txt", 100, nil) {
		t.Fatal("same mtime should not be changed")
	}
	if !s.Changed("a.txt", 200, nil) {
		t.Fatal("new mtime should be changed")
	}
}

func TestBuildStateVerifyHashSkipsTouchWithoutEdit(t *testing.T) {
	s := NewBuildState(true)
	data := []byte("same content")
	if !s.Changed("a.txt", 100, data) {
		t.Fatal("first sight should be changed")
	}
	if s.Changed("a.txt", 200, data) {
		t.Fatal("touch without edit should not be considered changed when verifyHash is enabled")
	}
	if !s.Changed("a.txt", 300, []byte("different content")) {
		t.Fatal("actual content change should be changed")
	}
}

func TestBuildStateSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mtimes.db")

	s := NewBuildState(false)
	s.Changed("Actor/ActorLink/Dog.bxml.yml", 111, nil)
	s.Changed("Map/MainField/A-1.byml.yml", 222, nil)
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadBuildState(path, false)
	if err != nil {
		t.Fatalf("LoadBuildState: %v", err)
	}
	if loaded.Changed("Actor/ActorLink/Dog.bxml.yml", 111, nil) {
		t.Fatal("reloaded state should remember the previous mtime")
	}
}

func TestResolveActorSkipsDummyLinks(t *testing.T) {
	link := codec.NewAampObject("LinkTarget")
	link.Params["AIProgramUser"] = "Dog"
	link.Params["ASUser"] = "Dummy"
	root := codec.NewAampObject("param_root")
	root.Objects["LinkTarget"] = link
	doc := &codec.AampDocument{Root: root}

	readFile := func(string) ([]byte, error) { return []byte{}, nil }
	desc, warnings, err := ResolveActor("Dog", doc, readFile)
	if err != nil {
		t.Fatalf("ResolveActor: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(desc.Files) != 1 || desc.Files[0] != "AIProgram/Dog.baiprog.yml" {
		t.Fatalf("got %v, want exactly [AIProgram/Dog.baiprog.yml]", desc.Files)
	}
}

func TestResolveActorNoLinkTarget(t *testing.T) {
	doc := &codec.AampDocument{Root: codec.NewAampObject("NotLinkTarget")}
	readFile := func(string) ([]byte, error) { return []byte{}, nil }
	_, _, err := ResolveActor("Dog", doc, readFile)
	if err != ErrNoLinkTarget {
		t.Fatalf("got %v, want ErrNoLinkTarget", err)
	}
}

func TestResolveActorWiresSecondaryListsAndPhysics(t *testing.T) {
	asList := codec.NewAampObject("ASList")
	asDefines := codec.NewAampObject("ASDefines")
	walk := codec.NewAampObject("0")
	walk.Params["Filename"] = "Walk"
	asDefines.Objects["0"] = walk
	asList.Objects["ASDefines"] = asDefines

	physics := codec.NewAampObject("bphysics")
	paramSet := codec.NewAampObject("ParamSet")
	paramSet.Params["use_cloth"] = true
	paramSet.Params["cloth_setup_file_path"] = "Dog.hkcl"
	physics.Objects["ParamSet"] = paramSet

	link := codec.NewAampObject("LinkTarget")
	link.Params["ASUser"] = "Dog"
	link.Params["PhysicsUser"] = "Dog"
	root := codec.NewAampObject("param_root")
	root.Objects["LinkTarget"] = link
	doc := &codec.AampDocument{Root: root}

	asListDoc := &codec.AampDocument{Root: asList}
	asListText, err := asListDoc.MarshalText()
	if err != nil {
		t.Fatalf("marshal ASList fixture: %v", err)
	}
	physicsDoc := &codec.AampDocument{Root: physics}
	physicsText, err := physicsDoc.MarshalText()
	if err != nil {
		t.Fatalf("marshal physics fixture: %v", err)
	}

	readFile := func(p string) ([]byte, error) {
		switch p {
		case "ASList/Dog.baslist.yml":
			return asListText, nil
		case "Physics/Dog.bphysics.yml":
			return physicsText, nil
		default:
			return nil, os.ErrNotExist
		}
	}

	desc, _, err := ResolveActor("Dog", doc, readFile)
	if err != nil {
		t.Fatalf("ResolveActor: %v", err)
	}
	wantFiles := map[string]bool{"ASList/Dog.baslist.yml": true, "AS/Walk.bas.yml": true}
	if len(desc.Files) != len(wantFiles) {
		t.Fatalf("got Files %v, want %v", desc.Files, wantFiles)
	}
	for _, f := range desc.Files {
		if !wantFiles[f] {
			t.Fatalf("unexpected file %q in %v", f, desc.Files)
		}
	}
	if len(desc.RawFiles) != 1 || desc.RawFiles[0] != "Physics/Cloth/Dog.hkcl" {
		t.Fatalf("got RawFiles %v, want exactly [Physics/Cloth/Dog.hkcl]", desc.RawFiles)
	}
}

func TestPhysicsFileSetGatedFields(t *testing.T) {
	root := codec.NewAampObject("bphysics")
	paramSet := codec.NewAampObject("ParamSet")
	paramSet.Params["use_cloth"] = true
	paramSet.Params["cloth_setup_file_path"] = "Dog.hkcl"
	paramSet.Params["use_ragdoll"] = false
	root.Objects["ParamSet"] = paramSet
	doc := &codec.AampDocument{Root: root}

	files, err := PhysicsFileSet(doc)
	if err != nil {
		t.Fatalf("PhysicsFileSet: %v", err)
	}
	if len(files) != 1 || files[0] != "Physics/Cloth/Dog.hkcl" {
		t.Fatalf("got %v, want exactly [Physics/Cloth/Dog.hkcl]", files)
	}
}

func TestPhysicsFileSetMissingPathIsFatal(t *testing.T) {
	root := codec.NewAampObject("bphysics")
	paramSet := codec.NewAampObject("ParamSet")
	paramSet.Params["use_ragdoll"] = true
	root.Objects["ParamSet"] = paramSet
	doc := &codec.AampDocument{Root: root}

	if _, err := PhysicsFileSet(doc); err == nil {
		t.Fatal("expected an error when use_ragdoll is set but ragdoll_setup_file_path is missing")
	}
}

func TestMergedEventKeyRoundTrip(t *testing.T) {
	key := MergedEventKey("Demo000_0", "Demo_OpeningDemo")
	name, sub, ok := SplitMergedEventKey(key)
	if !ok || name != "Demo000_0" || sub != "Demo_OpeningDemo" {
		t.Fatalf("got (%q,%q,%v), want (Demo000_0,Demo_OpeningDemo,true)", name, sub, ok)
	}
}

func TestSplitMergedEventKeyRejectsBareKey(t *testing.T) {
	if _, _, ok := SplitMergedEventKey("NoDelimiterHere"); ok {
		t.Fatal("a key with no angle-bracket delimiter should not split")
	}
}

func TestBuildPackRequiresEventInfoForBootup(t *testing.T) {
	dir := NewSourceDir("Bootup")
	_, err := BuildPack("Bootup", dir, true, nil)
	if err != ErrMissingBootupEventInfo {
		t.Fatalf("got %v, want ErrMissingBootupEventInfo", err)
	}

	dir.Files["Event/EventInfo.product.sbyml"] = []byte("stub")
	if _, err := BuildPack("Bootup", dir, true, nil); err != nil {
		t.Fatalf("BuildPack with EventInfo present: %v", err)
	}
}

func TestBuildPackFallsBackToStagedEventInfoForBootup(t *testing.T) {
	dir := NewSourceDir("Bootup")
	staged := map[string][]byte{"Event/EventInfo.product.sbyml": []byte("staged")}

	writer, err := BuildPack("Bootup", dir, true, staged)
	if err != nil {
		t.Fatalf("BuildPack should fall back to the staged event-info bytes: %v", err)
	}
	data, ok := findEntry(writer, "Event/EventInfo.product.sbyml")
	if !ok || string(data) != "staged" {
		t.Fatalf("got (%v,%v), want the staged event-info bytes injected", data, ok)
	}
}

func TestBuildPackTitleBGOnlyIngestsPrefixedEntries(t *testing.T) {
	dir := NewSourceDir("TitleBG")
	staged := map[string][]byte{
		"TitleBG.pack/Actor/Pack/Dog.sbactorpack": []byte("dog"),
		"Event/EventInfo.product.sbyml":           []byte("unrelated"),
	}

	writer, err := BuildPack("TitleBG", dir, true, staged)
	if err != nil {
		t.Fatalf("BuildPack: %v", err)
	}
	if _, ok := findEntry(writer, "Actor/Pack/Dog.sbactorpack"); !ok {
		t.Fatal("expected the TitleBG.pack-prefixed entry to be ingested with its prefix stripped")
	}
	if _, ok := findEntry(writer, "Event/EventInfo.product.sbyml"); ok {
		t.Fatal("the unprefixed EventInfo staging key must not leak into TitleBG.pack")
	}
}

func TestUnbuildActorInfoSplitsPerActor(t *testing.T) {
	root := codec.NewBymlMap()
	actors := codec.NewBymlArray()
	dog := codec.NewBymlMap()
	dog.Set("name", codec.NewBymlScalar("Dog"))
	dog.Set("profile", codec.NewBymlScalar("Enemy"))
	actors.Array = append(actors.Array, dog)
	root.Set("Actors", actors)

	out, err := UnbuildActorInfo(root)
	if err != nil {
		t.Fatalf("UnbuildActorInfo: %v", err)
	}
	data, ok := out["Dog.info.yml"]
	if !ok {
		t.Fatal("missing Dog.info.yml")
	}
	doc, err := codec.ParseBymlText(data)
	if err != nil {
		t.Fatalf("ParseBymlText: %v", err)
	}
	if _, hasName := doc.Get("name"); hasName {
		t.Fatal("the name key should be stripped from the per-actor document")
	}
}

func TestUnbuildEventInfoGroupsByEventName(t *testing.T) {
	root := codec.NewBymlMap()
	entry := codec.NewBymlMap()
	entry.Set("demo_event", codec.NewBymlScalar(true))
	root.Set(MergedEventKey("Demo000_0", "Demo_OpeningDemo"), entry)

	out, err := UnbuildEventInfo(root)
	if err != nil {
		t.Fatalf("UnbuildEventInfo: %v", err)
	}
	if _, ok := out["Demo000_0.info.yml"]; !ok {
		t.Fatalf("expected Demo000_0.info.yml, got keys %v", keysOf(out))
	}
}

func keysOf(m map[string][]byte) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestRunIncrementalNoOpOnUnchangedSource(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	if err := os.MkdirAll(filepath.Join(src, "Map", "MainField"), 0o755); err != nil {
		t.Fatal(err)
	}
	mapFile := filepath.Join(src, "Map", "MainField", "A-1.byml.yml")
	if err := os.WriteFile(mapFile, []byte("foo: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Source = src
	cfg.Output = out

	bd := newTestBuilder(cfg)
	ctx := context.Background()

	first, err := bd.Run(ctx)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.FilesChanged == 0 {
		t.Fatal("first run should have compiled at least one file")
	}

	bd2 := newTestBuilder(cfg)
	bd2.State, err = LoadBuildState(filepath.Join(out, "mtimes.db"), false)
	if err != nil {
		t.Fatalf("LoadBuildState: %v", err)
	}

	second, err := bd2.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.FilesChanged != 0 {
		t.Fatalf("second run on unchanged source should compile nothing, got %d", second.FilesChanged)
	}
}

func TestBuildPacksSkipsUnchangedDirectory(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	packDir := filepath.Join(src, "Pack", "Dungeon")
	if err := os.MkdirAll(packDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(packDir, "Data.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Source = src
	cfg.Output = out

	bd := newTestBuilder(cfg)
	ctx := context.Background()

	first, err := bd.Run(ctx)
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.ArchivesRewritten == 0 {
		t.Fatal("first run should have written the Dungeon pack")
	}

	bd2 := newTestBuilder(cfg)
	bd2.State, err = LoadBuildState(filepath.Join(out, "mtimes.db"), false)
	if err != nil {
		t.Fatalf("LoadBuildState: %v", err)
	}

	second, err := bd2.Run(ctx)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.ArchivesRewritten != 0 {
		t.Fatalf("second run on an unchanged Pack directory should rewrite nothing, got %d", second.ArchivesRewritten)
	}
}

func TestBuildEventsAssemblesPerEventArchive(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	infoDir := filepath.Join(src, "Event", "EventInfo")
	if err := os.MkdirAll(infoDir, 0o755); err != nil {
		t.Fatal(err)
	}
	info := "NpcTalk_Sub: {}\n"
	if err := os.WriteFile(filepath.Join(infoDir, "NpcTalk_0.info.yml"), []byte(info), 0o644); err != nil {
		t.Fatal(err)
	}

	flowDir := filepath.Join(src, "EventFlow")
	if err := os.MkdirAll(flowDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(flowDir, "NpcTalk_0.bfevfl"), []byte("flow"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Source = src
	cfg.Output = out

	bd := newTestBuilder(cfg)
	if _, err := bd.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	archivePath := filepath.Join(out, "Event", "NpcTalk_0.sbeventpack")
	if _, err := os.Stat(archivePath); err != nil {
		t.Fatalf("expected %s to exist: %v", archivePath, err)
	}
	infoPath := filepath.Join(out, "Event", "EventInfo.product.sbyml")
	if _, err := os.Stat(infoPath); err != nil {
		t.Fatalf("expected %s to exist: %v", infoPath, err)
	}
}

func TestBuildEventsSkipsArchiveWhenPrimaryFlowMissing(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	infoDir := filepath.Join(src, "Event", "EventInfo")
	if err := os.MkdirAll(infoDir, 0o755); err != nil {
		t.Fatal(err)
	}
	info := "NpcTalk_Sub: {}\n"
	if err := os.WriteFile(filepath.Join(infoDir, "NpcTalk_0.info.yml"), []byte(info), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Source = src
	cfg.Output = out

	bd := newTestBuilder(cfg)
	if _, err := bd.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	archivePath := filepath.Join(out, "Event", "NpcTalk_0.sbeventpack")
	if _, err := os.Stat(archivePath); err == nil {
		t.Fatal("an event missing its required EventFlow primary file must not produce an archive")
	}
}

func TestBuildTextEmitsLanguageBundle(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()

	msgDir := filepath.Join(src, "Message", "USen")
	if err := os.MkdirAll(msgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	msyt := "entries:\n  - label: Msg_0\n    text: Hello\n"
	if err := os.WriteFile(filepath.Join(msgDir, "Msg_0.msyt"), []byte(msyt), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Source = src
	cfg.Output = out

	bd := newTestBuilder(cfg)
	result, err := bd.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ArchivesRewritten == 0 {
		t.Fatal("expected at least one archive written for the language bundle")
	}

	bundlePath := filepath.Join(out, "Pack", "Bootup_USen.pack")
	if _, err := os.Stat(bundlePath); err != nil {
		t.Fatalf("expected %s to exist: %v", bundlePath, err)
	}
}

func newTestBuilder(cfg config.Config) *Builder {
	bd := New(cfg, nil)
	return bd
}
