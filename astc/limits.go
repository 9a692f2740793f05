package astc

// Block footprint limits fixed by the ASTC format. These must not be changed;
// several packed tables are sized from them.
const (
	// BlockBytes is the size in bytes of a single ASTC block payload.
	BlockBytes = 16

	blockMaxTexels     = 216 // 6x6x6
	blockMaxWeights    = 64
	blockMaxPartitions = 4
	blockMaxComponents = 4

	blockMaxPartitionings = 1024
	blockMaxKMeansTexels  = 64

	blockMinWeightBits = 24
	blockMaxWeightBits = 96

	partitionIndexBits  = 10
	weightsPlane2Offset = 32

	weightsMaxBlockModes      = 2048
	weightsMaxDecimationModes = 87

	blockMaxColorValues  = 8
	blockMaxColorInts    = 18
	blockMaxColorIntsBuf = 32

	// blockBadBlockMode marks an 11-bit mode field with no legal decoding for
	// the current block size in the packed index table.
	blockBadBlockMode = 0xFFFF

	// tuneMaxTrialCandidates bounds the number of candidate encodings carried
	// from the endpoint format search into final refinement.
	tuneMaxTrialCandidates = 4
)

// errorCalcDefault is the error sentinel used before any candidate has been
// scored, and by searches to mark infeasible trials.
const errorCalcDefault = 1e30
