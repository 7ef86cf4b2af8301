package api

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/keagan/promoreel/internal/pipeline"
)

// confine resolves a request path against the media root. Relative paths are
// joined to the root; any path that ends up outside it is rejected.
func (s *Server) confine(field, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	full := path
	if !filepath.IsAbs(full) {
		full = filepath.Join(s.mediaRoot, full)
	}
	full = filepath.Clean(full)

	rel, err := filepath.Rel(s.mediaRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &pipeline.Error{
			Kind: pipeline.KindValidation,
			Op:   "api",
			Err:  fmt.Errorf("%s %q is outside the media root", field, path),
		}
	}
	return full, nil
}

func (s *Server) confinePass1(req *pipeline.Pass1Request) error {
	for i := range req.Inputs {
		p, err := s.confine("input", req.Inputs[i].Path)
		if err != nil {
			return err
		}
		req.Inputs[i].Path = p
	}
	logo, err := s.confine("logo", req.Logo)
	if err != nil {
		return err
	}
	req.Logo = logo
	return nil
}

func (s *Server) confinePass2(req *pipeline.Pass2Request) error {
	// output always goes to the configured directory
	req.OutputDir = ""

	logo, err := s.confine("logo", req.Logo)
	if err != nil {
		return err
	}
	bgm, err := s.confine("bgm", req.BGM)
	if err != nil {
		return err
	}
	req.Logo, req.BGM = logo, bgm
	return nil
}
