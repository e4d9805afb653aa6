package keg

import (
	"crypto/sha256"

	"github.com/rotisserie/eris"
	"zombiezen.com/go/nix/nar"
)

// Nix uses a special base32 alphabet (without E, O, U, T)
// See: https://github.com/kolloch/nix-base32
const nixBase32Alphabet = "0123456789abcdfghijklmnpqrsvwxyz"

// Digest hashes the NAR serialization of libexec followed by bin. NAR
// records contents, executable bits and symlink targets but no timestamps
// or owners, so two installs of the same snapshot digest equal.
func (k *Keg) Digest() (string, error) {
	h := sha256.New()
	for _, dir := range []string{k.Libexec(), k.BinDir()} {
		if err := nar.DumpPath(h, dir); err != nil {
			return "", eris.Wrapf(err, "serializing %s", dir)
		}
	}
	return "sha256:" + toNixBase32(h.Sum(nil)), nil
}

// toNixBase32 converts a byte slice to a Nix-compatible base32 encoded string
func toNixBase32(bytes []byte) string {
	length := (len(bytes)*8-1)/5 + 1
	result := make([]byte, length)

	for n := 0; n < length; n++ {
		b := n * 5
		i := b / 8
		j := b % 8

		v := bytes[i] >> uint(j)
		if j > 3 && i+1 < len(bytes) {
			v |= bytes[i+1] << uint(8-j)
		}

		result[length-n-1] = nixBase32Alphabet[v&0x1f]
	}

	return string(result)
}
