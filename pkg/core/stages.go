package core

// Stage names reported to the progress observer, in order of appearance.
const (
	StagePreparing       = "preparing"
	StageEncrypting      = "encrypting"
	StageChunking        = "chunking"
	StageReplicating     = "replicating"
	StageStoringPieces   = "storing-pieces"
	StageStoringManifest = "storing-manifest"

	StageFetchingManifest = "fetching-manifest"
	StageReconstructing   = "reconstructing"
	StageDecrypting       = "decrypting"

	StageBuildingArchive = "building-archive"
	StageWritingArchive  = "writing-archive"
	StageParsingArchive  = "parsing-archive"
	StageStoringItems    = "storing-items"

	StageDone = "done"
)
