package codec

import (
	"bytes"
	"testing"
)

func TestHashName(t *testing.T) {
	if got := HashName("EnemyFortressMgrTag"); got != 31119 {
		t.Fatalf("HashName(EnemyFortressMgrTag) = %d, want 31119", got)
	}
}

func TestYaz0RoundTrip(t *testing.T) {
	cases := [][]byte{
		bytes.Repeat([]byte("abcabcabcabc"), 50),
		[]byte("no repetition here at all, just plain text data"),
		bytes.Repeat([]byte{0}, 4096),
	}
	for i, src := range cases {
		compressed := Yaz0Compress(src)
		if !IsYaz0(compressed) {
			t.Fatalf("case %d: compressed data missing Yaz0 magic", i)
		}
		out, err := Yaz0Decompress(compressed)
		if err != nil {
			t.Fatalf("case %d: decompress: %v", i, err)
		}
		if !bytes.Equal(out, src) {
			t.Fatalf("case %d: round trip mismatch: got %d bytes, want %d", i, len(out), len(src))
		}
	}
}

func TestShouldCompress(t *testing.T) {
	yaz0Data := Yaz0Compress([]byte("hello"))
	tests := []struct {
		ext  string
		data []byte
		want bool
	}{
		{"sbactorpack", []byte("plain"), true},
		{"sarc", []byte("plain"), false},
		{"bfres", []byte("plain"), false},
		{"sbyml", yaz0Data, false},
	}
	for _, tc := range tests {
		if got := ShouldCompress(tc.ext, tc.data); got != tc.want {
			t.Errorf("ShouldCompress(%q, ...) = %v, want %v", tc.ext, got, tc.want)
		}
	}
}

func TestSarcRoundTrip(t *testing.T) {
	sf := NewSarcFile(true)
	sf.Set("Actor/ActorLink/Dog.bxml", []byte("alpha"))
	sf.Set("Actor/AIProgram/Dog.baiprog", []byte("beta data here"))

	data := sf.Marshal()
	parsed, err := UnmarshalSarc(data)
	if err != nil {
		t.Fatalf("UnmarshalSarc: %v", err)
	}
	if len(parsed.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(parsed.Entries))
	}
	entry, ok := parsed.Get("Actor/ActorLink/Dog.bxml")
	if !ok {
		t.Fatal("missing Actor/ActorLink/Dog.bxml")
	}
	if string(entry.Data) != "alpha" {
		t.Fatalf("got %q, want alpha", entry.Data)
	}
}

func TestAampTextBinaryRoundTrip(t *testing.T) {
	root := NewAampObject("LinkTarget")
	root.Params["ASUser"] = "Work/Dog.bas"
	child := NewAampObject("ParamSet")
	child.Params["use_cloth"] = true
	root.Objects["ParamSet"] = child

	doc := &AampDocument{Root: root}
	text, err := doc.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if !IsAampText(text) {
		t.Fatal("marshaled text missing sentinel")
	}
	parsed, err := ParseAampText(text)
	if err != nil {
		t.Fatalf("ParseAampText: %v", err)
	}
	if v, _ := ParamAsString(parsed.Root.Params["ASUser"]); v != "Work/Dog.bas" {
		t.Fatalf("got %v, want Work/Dog.bas", parsed.Root.Params["ASUser"])
	}

	bin := doc.MarshalBinary()
	parsedBin, err := UnmarshalAampBinary(bin)
	if err != nil {
		t.Fatalf("UnmarshalAampBinary: %v", err)
	}
	sub, ok := parsedBin.Root.Get("ParamSet")
	if !ok {
		t.Fatal("missing ParamSet child after binary round trip")
	}
	if !ParamAsBool(sub.Params["use_cloth"]) {
		t.Fatal("use_cloth should be true after binary round trip")
	}
}

func TestBymlTextBinaryRoundTrip(t *testing.T) {
	root := NewBymlMap()
	root.Set("Hashes", NewBymlScalar(int64(42)))
	arr := NewBymlArray()
	arr.Array = append(arr.Array, NewBymlScalar("Dog"), NewBymlScalar("Cat"))
	root.Set("Actors", arr)

	bin := MarshalBymlBinary(root)
	parsed, err := UnmarshalBymlBinary(bin)
	if err != nil {
		t.Fatalf("UnmarshalBymlBinary: %v", err)
	}
	actors, ok := parsed.Get("Actors")
	if !ok || len(actors.Array) != 2 {
		t.Fatalf("expected 2 actors, got %+v", actors)
	}

	text, err := MarshalBymlText(root)
	if err != nil {
		t.Fatalf("MarshalBymlText: %v", err)
	}
	reparsed, err := ParseBymlText(text)
	if err != nil {
		t.Fatalf("ParseBymlText: %v", err)
	}
	if _, ok := reparsed.Get("Hashes"); !ok {
		t.Fatal("missing Hashes after text round trip")
	}
}

func TestRSTBMonotonic(t *testing.T) {
	rstb := NewRSTB(true)
	stock := EmptyStockHashTable{}

	rstb.Update("Actor/Pack/Dog.sbactorpack", 100, true, stock)
	if v, _ := rstb.Get("Actor/Pack/Dog.sbactorpack"); v != 100 {
		t.Fatalf("got %d, want 100", v)
	}

	rstb.Update("Actor/Pack/Dog.sbactorpack", 50, true, stock)
	if v, _ := rstb.Get("Actor/Pack/Dog.sbactorpack"); v != 100 {
		t.Fatalf("size should not shrink: got %d, want 100", v)
	}

	rstb.Update("Actor/Pack/Dog.sbactorpack", 150, true, stock)
	if v, _ := rstb.Get("Actor/Pack/Dog.sbactorpack"); v != 150 {
		t.Fatalf("got %d, want 150", v)
	}

	rstb.Update("Actor/Pack/Dog.sbactorpack", 0, false, stock)
	if _, ok := rstb.Get("Actor/Pack/Dog.sbactorpack"); ok {
		t.Fatal("entry should be removed when no estimate is available for a modded file")
	}
}

func TestRSTBBinaryRoundTrip(t *testing.T) {
	rstb := NewRSTB(false)
	rstb.Update("Map/Main/A-1.smubin", 4096, true, EmptyStockHashTable{})
	data := rstb.Marshal()
	parsed, err := UnmarshalRSTB(data, false)
	if err != nil {
		t.Fatalf("UnmarshalRSTB: %v", err)
	}
	if v, ok := parsed.Get("Map/Main/A-1.smubin"); !ok || v != 4096 {
		t.Fatalf("got %d,%v want 4096,true", v, ok)
	}
}
