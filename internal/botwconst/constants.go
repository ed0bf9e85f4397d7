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

// Package botwconst holds the fixed, compile-time tables the build pipeline
// needs verbatim: the ActorLink key table, the Physics ParamSet field names,
// the title actor/event sets, and the archive/RSTB extension sets.
package botwconst

// LinkEntry describes where a LinkTarget value resolves on disk: the
// subdirectory and extension a referenced file takes under Actor/, and
// the LinkTarget parameter name that carries the reference.
type LinkEntry struct {
	Subdir    string
	Ext       string
	ParamName string
}

// ActorLinks maps each LinkTarget parameter's CRC32 (ISO-HDLC) name hash to
// the subdirectory and extension its value resolves under Actor/.
//
// Four keys carry secondary resolution in addition to the direct file they
// name: ASUser (110127898), AttentionUser (1086735552),
// RgConfigListUser (4022948047), and PhysicsUser (2366604039).
var ActorLinks = map[uint32]LinkEntry{
	3293308145: {"AIProgram", "baiprog", "AIProgramUser"},
	2851261459: {"AISchedule", "baischedule", "AIScheduleUser"},
	1241489578: {"AnimationInfo", "baniminfo", "AnimationInfoUser"},
	110127898:  {"ASList", "baslist", "ASUser"},
	1086735552: {"AttClientList", "batcllist", "AttentionUser"},
	1767976113: {"Awareness", "bawareness", "AwarenessUser"},
	713857735:  {"BoneControl", "bbonectrl", "BoneControlUser"},
	2863165669: {"Chemical", "bchemical", "ChemicalUser"},
	2307148887: {"DamageParam", "bdmgparam", "DamageParamUser"},
	2189637974: {"DropTable", "bdrop", "DropTableUser"},
	619158934:  {"GeneralParamList", "bgparamlist", "GeneralParamListUser"},
	414149463:  {"LifeCondition", "blifecondition", "LifeConditionUser"},
	1096753192: {"LOD", "blod", "LODUser"},
	3086518481: {"ModelList", "bmodellist", "ModelListUser"},
	2366604039: {"Physics", "bphysics", "PhysicsUser"},
	1292038778: {"RagdollBlendWeight", "brgbw", "RagdollBlendWeightUser"},
	4022948047: {"RagdollConfigList", "brgconfiglist", "RgConfigListUser"},
	1589643025: {"Recipe", "brecipe", "RecipeUser"},
	2994379201: {"ShopData", "bshop", "ShopDataUser"},
	3926186935: {"UMii", "bumii", "UMiiUser"},
}

// Secondary-resolution key hashes, named for readability at call sites.
const (
	KeyASUser          uint32 = 110127898
	KeyAttentionUser    uint32 = 1086735552
	KeyRgConfigListUser uint32 = 4022948047
	KeyPhysicsUser      uint32 = 2366604039
)

// Physics ParamSet field name hashes (§6 of the fixed-constants list).
const (
	ParamSetPrimaryObject uint32 = 1258832850
	RigidBodySetObject    uint32 = 4288596824
)

// Physics gate/field names, resolved by name rather than hash since the
// text form always carries the param name.
const (
	FieldUseRagdoll              = "use_ragdoll"
	FieldUseSupportBone          = "use_support_bone"
	FieldUseCloth                = "use_cloth"
	FieldUseRigidBodySetNum      = "use_rigid_body_set_num"
	FieldRagdollSetupFilePath    = "ragdoll_setup_file_path"
	FieldSupportBoneSetupFilePath = "support_bone_setup_file_path"
	FieldClothSetupFilePath      = "cloth_setup_file_path"
	FieldSetupFilePath           = "setup_file_path"
)

// TitleActors are actors the Pack Builder inlines into TitleBG.pack instead
// of writing as a loose Actor/Pack/*.sbactorpack file.
var TitleActors = []string{
	"AncientArrow",
	"Animal_Insect_A",
	"Animal_Insect_B",
	"Animal_Insect_F",
	"Animal_Insect_H",
	"Animal_Insect_M",
	"Animal_Insect_S",
	"Animal_Insect_X",
	"Armor_Default_Extra_00",
	"Armor_Default_Extra_01",
	"BombArrow_A",
	"BrightArrow",
	"BrightArrowTP",
	"CarryBox",
	"DemoXLinkActor",
	"Dm_Npc_Gerudo_HeroSoul_Kago",
	"Dm_Npc_Goron_HeroSoul_Kago",
	"Dm_Npc_RevivalFairy",
	"Dm_Npc_Rito_HeroSoul_Kago",
	"Dm_Npc_Zora_HeroSoul_Kago",
	"ElectricArrow",
	"ElectricWaterBall",
	"EventCameraRumble",
	"EventControllerRumble",
	"EventMessageTransmitter1",
	"EventSystemActor",
	"Explode",
	"Fader",
	"FireArrow",
	"FireRodLv1Fire",
	"FireRodLv2Fire",
	"FireRodLv2FireChild",
	"GameROMPlayer",
	"IceArrow",
	"IceRodLv1Ice",
	"IceRodLv2Ice",
	"Item_Conductor",
	"Item_Magnetglove",
	"Item_Material_01",
	"Item_Material_03",
	"Item_Material_07",
	"Item_Ore_F",
	"NormalArrow",
	"Obj_IceMakerBlock",
	"Obj_SupportApp_Wind",
	"PlayerShockWave",
	"PlayerStole2",
	"RemoteBomb",
	"RemoteBomb2",
	"RemoteBombCube",
	"RemoteBombCube2",
	"SceneSoundCtrlTag",
	"SoundTriggerTag",
	"TerrainCalcCenterTag",
	"ThunderRodLv1Thunder",
	"ThunderRodLv2Thunder",
	"ThunderRodLv2ThunderChild",
	"WakeBoardRope",
}

// NestedEvents contribute only an EventInfo fragment; they never get their
// own Event/<name>.sbeventpack.
var NestedEvents = []string{"SignalFlowchart"}

// TitleEvents are always-resident events baked into TitleBG.pack; like
// NestedEvents they are skipped for standalone archive emission.
var TitleEvents = []string{
	"AocResident",
	"Aoc2Resident",
	"Demo000_0",
	"Demo000_2",
	"Demo001_0",
	"Demo002_0",
	"Demo005_0",
	"Demo006_0",
	"Demo007_1",
	"Demo008_1",
	"Demo008_3",
	"Demo010_0",
	"Demo010_1",
	"Demo011_0",
	"Demo017_0",
	"Demo025_0",
	"Demo042_0",
	"Demo042_1",
	"Demo048_0",
	"Demo048_1",
	"Demo103_0",
	"GetDemo",
	"OperationGuide",
	"SDemo_D-6",
}

// ProcessedDirs are the source subdirectories the core pipeline compiles.
var ProcessedDirs = []string{"Actor", "Event", "Map", "Message", "Pack"}

// UnprocessedDirs have no dedicated build stage: the builder's misc pass
// compiles recognized .yml documents in them, copies every other file
// through unchanged, and adds no RSTB entries for them.
var UnprocessedDirs = []string{
	"Effect", "Font", "Game", "Layout", "Local", "Model", "Movie",
	"NavMesh", "Physics", "Sound", "Terrain", "StockItem", "System", "Voice", "UI",
}

// ExcludeRSTB lists extensions that never get an RSTB entry.
var ExcludeRSTB = map[string]bool{
	"pack": true, "bgdata": true, "txt": true, "bgsvdata": true, "yml": true,
	"json": true, "ps1": true, "bak": true, "bat": true, "ini": true,
	"png": true, "bfstm": true, "py": true, "sh": true, "old": true, "stera": true,
}

// ArchiveExts is the set of extensions the codec layer treats as nested
// archives (SARC-family containers).
var ArchiveExts = map[string]bool{
	"pack": true, "sarc": true, "bactorpack": true, "sbactorpack": true,
	"beventpack": true, "sbeventpack": true, "blarc": true, "sblarc": true,
	"bfarc": true, "sfarc": true, "genvb": true, "sgenvb": true, "bgenv": true, "sbgenv": true,
}

// IsArchiveExt reports whether ext (without a leading dot) names an archive
// container per ArchiveExts.
func IsArchiveExt(ext string) bool {
	return ArchiveExts[ext]
}
