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
	"fmt"
	"sort"

	"botwbuild/internal/botwconst"
	"botwbuild/internal/codec"
)

// ActorDescriptor is the resolved file set for one actor: every source
// file (by canonical-style relative path under Actor/) the actor's pack
// needs to bundle, derived from its LinkTarget object. Files holds members
// that go through the Compile Cache (AAMP/BYML text sources); RawFiles
// holds opaque members (physics Havok binaries) copied as-is.
type ActorDescriptor struct {
	Name     string
	Files    []string
	RawFiles []string
}

// ResolveActor walks doc's LinkTarget object and returns the set of files
// the actor's pack must contain. Files entries carry the source tree's
// ".yml" suffix, matching the Compile Cache's expectations; readFile
// reads a referenced file's content relative to Actor/. A reference
// readFile can't satisfy is reported as a warning, not a fatal error,
// since a missing optional member is within the warn policy. Four keys
// additionally drive secondary resolution once their own file is read:
// ASUser, AttentionUser, RgConfigListUser, and PhysicsUser.
func ResolveActor(name string, doc *codec.AampDocument, readFile func(path string) ([]byte, error)) (*ActorDescriptor, []string, error) {
	link, ok := doc.Root.Get("LinkTarget")
	if !ok {
		return nil, nil, ErrNoLinkTarget
	}

	desc := &ActorDescriptor{Name: name}
	var warnings []string

	hashes := make([]uint32, 0, len(botwconst.ActorLinks))
	for h := range botwconst.ActorLinks {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	for _, hash := range hashes {
		entry := botwconst.ActorLinks[hash]
		raw, ok := link.Param(entry.ParamName)
		if !ok {
			continue
		}
		ref, ok := codec.ParamAsString(raw)
		if !ok || ref == "" || ref == "Dummy" {
			continue
		}

		filePath := fmt.Sprintf("%s/%s.%s.yml", entry.Subdir, ref, entry.Ext)
		data, err := readFile(filePath)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("actor %s: referenced file %s does not exist", name, filePath))
			continue
		}
		desc.Files = append(desc.Files, filePath)

		switch hash {
		case botwconst.KeyASUser:
			files, serr := secondaryListFiles(data, "ASDefines", "Filename", "AS", "bas")
			if serr != nil {
				return nil, nil, fmt.Errorf("builder: actor %s: resolve ASList: %w", name, serr)
			}
			desc.Files = append(desc.Files, files...)
		case botwconst.KeyAttentionUser:
			files, serr := secondaryListFiles(data, "AttClients", "FileName", "AttClient", "batcl")
			if serr != nil {
				return nil, nil, fmt.Errorf("builder: actor %s: resolve AttClientList: %w", name, serr)
			}
			desc.Files = append(desc.Files, files...)
		case botwconst.KeyRgConfigListUser:
			files, serr := secondaryListFiles(data, "ImpulseParamList", "FileName", "RagdollConfig", "brgconfig")
			if serr != nil {
				return nil, nil, fmt.Errorf("builder: actor %s: resolve RagdollConfigList: %w", name, serr)
			}
			desc.Files = append(desc.Files, files...)
		case botwconst.KeyPhysicsUser:
			physDoc, perr := codec.ParseAampText(data)
			if perr != nil {
				return nil, nil, fmt.Errorf("builder: actor %s: parse physics: %w", name, perr)
			}
			raws, perr := PhysicsFileSet(physDoc)
			if perr != nil {
				return nil, nil, fmt.Errorf("builder: actor %s: resolve physics: %w", name, perr)
			}
			desc.RawFiles = append(desc.RawFiles, raws...)
		}
	}

	sort.Strings(desc.Files)
	sort.Strings(desc.RawFiles)
	return desc, warnings, nil
}

// secondaryListFiles parses a referenced list document (ASList,
// AttClientList, or RagdollConfigList), finds its named list object, and
// returns the subdir/ext-qualified path for every non-Dummy entry's file
// field. The output subdir is a sibling of the list's own subdir under
// Actor/, e.g. ASList's entries land under Actor/AS/.
func secondaryListFiles(data []byte, listObjectName, fileField, subdir, ext string) ([]string, error) {
	doc, err := codec.ParseAampText(data)
	if err != nil {
		return nil, err
	}
	listObj, ok := findObjectNamed(doc.Root, listObjectName)
	if !ok {
		return nil, nil
	}

	names := make([]string, 0, len(listObj.Objects))
	for n := range listObj.Objects {
		names = append(names, n)
	}
	sort.Strings(names)

	var files []string
	for _, n := range names {
		child := listObj.Objects[n]
		v, ok := child.Param(fileField)
		if !ok {
			continue
		}
		s, ok := codec.ParamAsString(v)
		if !ok || s == "" || s == "Dummy" {
			continue
		}
		files = append(files, fmt.Sprintf("%s/%s.%s.yml", subdir, s, ext))
	}
	return files, nil
}

// PhysicsFileSet inspects a bphysics document's ParamSet object and
// returns the additional setup files a physics config pulls in: the
// ragdoll, support-bone, and cloth setups, gated by their respective
// use_* flags, and the rigid-body set file named under its nested
// RigidBodySet object when use_rigid_body_set_num is set. A gate that is
// true but whose companion path field is absent or empty is fatal — the
// gate promises the field, unlike a merely-missing file on disk, which
// the warn policy covers instead.
func PhysicsFileSet(doc *codec.AampDocument) ([]string, error) {
	paramSet, ok := findObjectNamed(doc.Root, "ParamSet")
	if !ok {
		return nil, nil
	}

	var files []string
	addIfSet := func(kind, gate, pathField string) error {
		v, ok := paramSet.Param(gate)
		if !ok || !codec.ParamAsBool(v) {
			return nil
		}
		p, ok := paramSet.Param(pathField)
		if !ok {
			return fmt.Errorf("builder: physics %s gate set but %s missing", gate, pathField)
		}
		s, ok := codec.ParamAsString(p)
		if !ok || s == "" {
			return fmt.Errorf("builder: physics %s gate set but %s empty", gate, pathField)
		}
		files = append(files, fmt.Sprintf("Physics/%s/%s", kind, s))
		return nil
	}

	if err := addIfSet("Ragdoll", botwconst.FieldUseRagdoll, botwconst.FieldRagdollSetupFilePath); err != nil {
		return nil, err
	}
	if err := addIfSet("SupportBone", botwconst.FieldUseSupportBone, botwconst.FieldSupportBoneSetupFilePath); err != nil {
		return nil, err
	}
	if err := addIfSet("Cloth", botwconst.FieldUseCloth, botwconst.FieldClothSetupFilePath); err != nil {
		return nil, err
	}

	if v, ok := paramSet.Param(botwconst.FieldUseRigidBodySetNum); ok && codec.ParamAsBool(v) {
		rigidSet, ok := findObjectNamed(doc.Root, "RigidBodySet")
		if !ok {
			return nil, fmt.Errorf("builder: physics use_rigid_body_set_num gate set but RigidBodySet object missing")
		}
		p, ok := rigidSet.Param(botwconst.FieldSetupFilePath)
		if !ok {
			return nil, fmt.Errorf("builder: physics use_rigid_body_set_num gate set but setup_file_path missing")
		}
		s, ok := codec.ParamAsString(p)
		if !ok || s == "" {
			return nil, fmt.Errorf("builder: physics use_rigid_body_set_num gate set but setup_file_path empty")
		}
		files = append(files, "Physics/RigidBody/"+s)
	}

	sort.Strings(files)
	return files, nil
}

// findObjectNamed does a depth-first search for a child object by name,
// since the real document nests ParamSet/RigidBodySet at varying depths
// depending on how many Set definitions an actor's physics carries.
func findObjectNamed(root *codec.AampObject, name string) (*codec.AampObject, bool) {
	if root.Name == name {
		return root, true
	}
	if child, ok := root.Objects[name]; ok {
		return child, true
	}
	for _, child := range root.Objects {
		if found, ok := findObjectNamed(child, name); ok {
			return found, true
		}
	}
	return nil, false
}
