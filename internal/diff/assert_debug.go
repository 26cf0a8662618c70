//go:build diffdebug

package diff

func assertHunks(hunks []Hunk, oldLen, newLen int) {
	if err := ValidateHunks(hunks, oldLen, newLen); err != nil {
		panic(err)
	}
}
