package domain

// Dimension names of the glued MITgcm output after assembly.
const (
	DimX   = "X"
	DimY   = "Y"
	DimZ   = "Z"
	DimXp1 = "Xp1"
	DimYp1 = "Yp1"
	DimZp1 = "Zp1"
	DimZu  = "Zu"
	DimZl  = "Zl"

	DimTime     = "time"
	DimTimeMidp = "time_midp"
)

// Dimension names as they appear in the source files.
const (
	SourceTimeDim      = "T"
	SourceDiagZDim     = "Zmd000216"
	SourceCroppedZlDim = "Zld000216"
	SourceSingletonDim = "Zd000001"

	// ScratchZDim holds Z while the diagnostics vertical axis is folded into it.
	ScratchZDim = "Ztmp"
)

// Attribute keys understood by the staggered grid.
const (
	AttrAxis     = "axis"
	AttrShift    = "c_grid_axis_shift"
	AttrPositive = "positive"

	AttrLongName    = "long_name"
	AttrDescription = "description"
	AttrUnits       = "units"
)

// Variables dropped from the sources because nothing downstream reads them.
var (
	GridDropVariables  = []string{"XU", "YU", "XV", "YV", "RC", "RF", "RU", "RL"}
	FieldDropVariables = []string{"diag_levels", "iter"}
)

// VerticalDims are the vertical-family dimensions whose coordinates are stored as
// positive depths.
var VerticalDims = []string{DimZ, DimZp1, DimZu, DimZl}

// ShiftedDims are the staggered dimensions; the first letter names the centred
// counterpart.
var ShiftedDims = []string{DimZp1, DimZu, DimZl, DimXp1, DimYp1}

// HorizontalCoord pairs a 1-D axis with the 2-D coordinate field it is reduced from.
type HorizontalCoord struct {
	Dim        string // Dimension whose coordinate is rebuilt.
	Field      string // 2-D coordinate field along Dim.
	Partner    string // 2-D coordinate field across Dim, used for the seam mask.
	Orthogonal string // Dimension averaged out.
}

// HorizontalCoords lists the four reductions performed by coordinate repair.
var HorizontalCoords = []HorizontalCoord{
	{Dim: DimX, Field: "XC", Partner: "YC", Orthogonal: DimY},
	{Dim: DimXp1, Field: "XG", Partner: "YG", Orthogonal: DimYp1},
	{Dim: DimY, Field: "YC", Partner: "XC", Orthogonal: DimX},
	{Dim: DimYp1, Field: "YG", Partner: "XG", Orthogonal: DimXp1},
}

// HorizontalCoordFields are the 2-D coordinate fields replaced by 1-D axes.
var HorizontalCoordFields = []string{"XC", "YC", "XG", "YG"}
