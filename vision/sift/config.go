package sift

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Config contains the parameters of every stage of the SIFT detector.
type Config struct {
	// extrema detection
	Neighborhood NeighborhoodType `json:"neighborhood"`
	SigmaS       float64          `json:"sigma_s"`
	Sigma0       float64          `json:"sigma_0"`
	Octaves      int              `json:"n_octaves"`
	Levels       int              `json:"n_levels"`
	TMag         float64          `json:"t_mag"`
	TPeak        float64          `json:"t_peak"`
	TExtrm       float64          `json:"t_extrm"`
	// refinement
	NRefine int     `json:"n_refine"`
	RhoMax  float64 `json:"rho_max"`
	// orientation
	NOrient int     `json:"n_orient"`
	NSmooth int     `json:"n_smooth"`
	TDomOr  float64 `json:"t_dom_or"`
	// descriptor
	NSpat   int     `json:"n_spat"`
	NAngl   int     `json:"n_angl"`
	TFclip  float64 `json:"t_fclip"`
	SFscale float64 `json:"s_fscale"`
	SDesc   float64 `json:"s_desc"`
}

// DefaultConfig returns the standard SIFT parameter set.
func DefaultConfig() *Config {
	return &Config{
		Neighborhood: Neighborhood10,
		SigmaS:       0.5,
		Sigma0:       1.6,
		Octaves:      4,
		Levels:       3,
		TMag:         0.01,
		TPeak:        0.01,
		TExtrm:       0.0,
		NRefine:      5,
		RhoMax:       10.0,
		NOrient:      36,
		NSmooth:      2,
		TDomOr:       0.8,
		NSpat:        4,
		NAngl:        8,
		TFclip:       0.2,
		SFscale:      512.0,
		SDesc:        10.0,
	}
}

// DescriptorLength is the number of entries of every feature vector built with this config.
func (config *Config) DescriptorLength() int {
	return config.NSpat * config.NSpat * config.NAngl
}

// LoadConfig loads a Config from a json file. Fields missing from the file keep their defaults.
func LoadConfig(file string) (*Config, error) {
	config := DefaultConfig()
	filePath := filepath.Clean(file)
	configFile, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(configFile.Close)
	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(config); err != nil {
		return nil, errors.Wrapf(err, "cannot decode sift config %q", file)
	}
	if err := config.Validate(file); err != nil {
		return nil, err
	}
	return config, nil
}

// ConfigFromAttributes builds a Config from a generic attribute map, as found in robot
// component configurations. Missing keys keep their defaults.
func ConfigFromAttributes(attrs map[string]interface{}) (*Config, error) {
	config := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           config,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attrs); err != nil {
		return nil, errors.Wrap(err, "cannot decode sift attributes")
	}
	if err := config.Validate("attributes"); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate ensures all parts of the Config are valid.
func (config *Config) Validate(path string) error {
	if !config.Neighborhood.IsValid() {
		return utils.NewConfigValidationError(path, errors.Errorf("neighborhood should be one of 8, 10, 18, 26, got %d", config.Neighborhood))
	}
	if config.SigmaS < 0 {
		return utils.NewConfigValidationError(path, errors.New("sigma_s should be >= 0"))
	}
	if config.Sigma0 <= config.SigmaS {
		return utils.NewConfigValidationError(path, errors.New("sigma_0 should be greater than sigma_s"))
	}
	if config.Octaves < 1 {
		return utils.NewConfigValidationError(path, errors.New("n_octaves should be >= 1"))
	}
	if config.Levels < 1 {
		return utils.NewConfigValidationError(path, errors.New("n_levels should be >= 1"))
	}
	if config.TMag < 0 || config.TPeak < 0 || config.TExtrm < 0 {
		return utils.NewConfigValidationError(path, errors.New("t_mag, t_peak and t_extrm should be >= 0"))
	}
	if config.NRefine < 1 {
		return utils.NewConfigValidationError(path, errors.New("n_refine should be >= 1"))
	}
	if config.RhoMax < 3 || config.RhoMax > 10 {
		return utils.NewConfigValidationError(path, errors.New("rho_max should be in [3, 10]"))
	}
	if config.NOrient < 3 {
		return utils.NewConfigValidationError(path, errors.New("n_orient should be >= 3"))
	}
	if config.NSmooth < 0 {
		return utils.NewConfigValidationError(path, errors.New("n_smooth should be >= 0"))
	}
	if config.TDomOr <= 0 || config.TDomOr > 1 {
		return utils.NewConfigValidationError(path, errors.New("t_dom_or should be in (0, 1]"))
	}
	if config.NSpat < 1 || config.NAngl < 1 {
		return utils.NewConfigValidationError(path, errors.New("n_spat and n_angl should be >= 1"))
	}
	if config.TFclip <= 0 {
		return utils.NewConfigValidationError(path, errors.New("t_fclip should be > 0"))
	}
	if config.SFscale <= 0 || config.SDesc <= 0 {
		return utils.NewConfigValidationError(path, errors.New("s_fscale and s_desc should be > 0"))
	}
	return nil
}

// Norm selects the distance used to compare feature vectors.
type Norm string

// The supported feature distances.
const (
	NormL1   = Norm("l1")
	NormL2   = Norm("l2")
	NormLInf = Norm("linf")
)

// MatchingConfig contains the parameters for matching descriptors.
type MatchingConfig struct {
	Norm Norm `json:"norm"`
	// RMax is the largest accepted ratio between the nearest and second nearest distance.
	RMax float64 `json:"r_max"`
}

// DefaultMatchingConfig returns L2 matching with Lowe's 0.8 ratio.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{Norm: NormL2, RMax: 0.8}
}

// Validate ensures all parts of the MatchingConfig are valid.
func (config *MatchingConfig) Validate(path string) error {
	switch config.Norm {
	case NormL1, NormL2, NormLInf:
	case "":
		return utils.NewConfigValidationFieldRequiredError(path, "norm")
	default:
		return utils.NewConfigValidationError(path, errors.Errorf("unknown norm %q", config.Norm))
	}
	if config.RMax <= 0 {
		return utils.NewConfigValidationError(path, errors.New("r_max should be > 0"))
	}
	return nil
}
