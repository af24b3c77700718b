package net

import (
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"
)

// ErrorURLNotFound is returned when the remote resource does not exist.
var ErrorURLNotFound = errors.New("URL not found")

// Download saves the content of a URL to a file. The file is only created
// once the server responds with 200, and a failed copy removes the partial
// file, so callers checking for its presence never see a bad download.
func Download(url string, filepath string) (retErr error) {
	resp, err := getResp(url)
	if err != nil {
		return errors.Wrap(err, "error creating HTTP Get request")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrorURLNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("error downloading file (status: %s): %s", resp.Status, url)
	}

	out, err := os.Create(filepath)
	if err != nil {
		return errors.Wrapf(err, "error creating file: %s", filepath)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = errors.Wrap(cerr, "closing file")
		}
		if retErr != nil {
			os.Remove(filepath)
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return errors.Wrap(err, "error saving downloaded content to file")
	}
	return nil
}
