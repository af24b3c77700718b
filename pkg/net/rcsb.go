package net

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	rcsbDownloadURL = "https://files.rcsb.org/download/%s.pdb"
	rcsbEntryURL    = "https://data.rcsb.org/rest/v1/core/entry/%s"
)

// RCSBEntry is the subset of the RCSB entry metadata used for logging.
type RCSBEntry struct {
	Struct struct {
		Title string `json:"title"`
	} `json:"struct"`
}

// FetchPDB downloads a PDB entry into the given directory and returns the
// file path. Existing files are not downloaded again.
func FetchPDB(id, dir string) (string, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if len(id) != 4 {
		return "", errors.Errorf("invalid pdb accession code: %s", id)
	}

	path := filepath.Join(dir, id+".pdb")
	if _, err := os.Stat(path); err == nil {
		log.Debugf("pdb entry already present: %s", path)
		return path, nil
	}

	url := fmt.Sprintf(rcsbDownloadURL, id)
	if err := Download(url, path); err != nil {
		if errors.Is(err, ErrorURLNotFound) {
			return "", errors.Errorf("pdb entry not found: %s", id)
		}
		return "", errors.Wrapf(err, "error downloading pdb entry: %s", id)
	}

	var entry RCSBEntry
	if err := GetJSON(fmt.Sprintf(rcsbEntryURL, id), &entry); err == nil && entry.Struct.Title != "" {
		log.Debugf("fetched %s: %s", id, entry.Struct.Title)
	}

	return path, nil
}
