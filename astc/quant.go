package astc

// quantMethod is an ASTC integer-sequence quantization mode.
//
// The numeric values are specified by the ASTC format and must not be reordered.
type quantMethod uint8

const (
	quant2   quantMethod = 0
	quant3   quantMethod = 1
	quant4   quantMethod = 2
	quant5   quantMethod = 3
	quant6   quantMethod = 4
	quant8   quantMethod = 5
	quant10  quantMethod = 6
	quant12  quantMethod = 7
	quant16  quantMethod = 8
	quant20  quantMethod = 9
	quant24  quantMethod = 10
	quant32  quantMethod = 11
	quant40  quantMethod = 12
	quant48  quantMethod = 13
	quant64  quantMethod = 14
	quant80  quantMethod = 15
	quant96  quantMethod = 16
	quant128 quantMethod = 17
	quant160 quantMethod = 18
	quant192 quantMethod = 19
	quant256 quantMethod = 20
)

var quantLevels = [...]int{2, 3, 4, 5, 6, 8, 10, 12, 16, 20, 24, 32, 40, 48, 64, 80, 96, 128, 160, 192, 256}

// quantLevel returns the alphabet size for a quantization mode, or 0 for
// out-of-range values.
func quantLevel(q quantMethod) int {
	if int(q) >= len(quantLevels) {
		return 0
	}
	return quantLevels[q]
}
