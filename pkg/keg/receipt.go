package keg

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

// Receipt records how a keg was produced. It holds no timestamps so that
// reinstalling the same snapshot writes the same bytes.
type Receipt struct {
	Formula      string   `json:"formula"`
	Version      string   `json:"version"`
	Tag          string   `json:"tag"`
	Source       string   `json:"source"`
	Platform     string   `json:"platform"`
	Dependencies []string `json:"dependencies"`
	Linked       bool     `json:"linked"`
	Digest       string   `json:"digest"`
}

// WriteReceipt stores r as INSTALL_RECEIPT.json
func (k *Keg) WriteReceipt(r *Receipt) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encoding receipt")
	}
	data = append(data, '\n')

	if err := os.WriteFile(k.ReceiptPath(), data, 0644); err != nil {
		return eris.Wrapf(ErrInstall, "write receipt: %v", err)
	}
	return nil
}

// ReadReceipt loads INSTALL_RECEIPT.json
func (k *Keg) ReadReceipt() (*Receipt, error) {
	data, err := os.ReadFile(k.ReceiptPath())
	if err != nil {
		return nil, eris.Wrap(err, "reading receipt")
	}

	var r Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, eris.Wrapf(err, "decoding %s", k.ReceiptPath())
	}
	return &r, nil
}
