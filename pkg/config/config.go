// pkg/config/config.go

package config

import (
	"errors"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	ierr "github.com/invoicing-microservice/pkg/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration is loaded once at process start and passed by value into
// the components that need it. Nothing below cmd/ reads the environment.
type Configuration struct {
	Issuer    PartyConfig   `mapstructure:"issuer" yaml:"issuer"`
	Bank      BankConfig    `mapstructure:"bank" yaml:"bank"`
	Recipient PartyConfig   `mapstructure:"recipient" yaml:"recipient"`
	Invoice   InvoiceConfig `mapstructure:"invoice" yaml:"invoice"`
	Render    RenderConfig  `mapstructure:"render" yaml:"render"`
	Logging   LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Server    ServerConfig  `mapstructure:"server" yaml:"server"`
}

type PartyConfig struct {
	Name   string `mapstructure:"name" yaml:"name" validate:"required,notblank"`
	Street string `mapstructure:"street" yaml:"street" validate:"required,notblank"`
	City   string `mapstructure:"city" yaml:"city" validate:"required,notblank"`
	TaxID  string `mapstructure:"tax_id" yaml:"tax_id" validate:"required,notblank"`
	VATID  string `mapstructure:"vat_id" yaml:"vat_id,omitempty"`
	// Registration is the trade register note printed next to the payment code.
	// Only meaningful for the issuer.
	Registration string `mapstructure:"registration" yaml:"registration,omitempty"`
}

type BankConfig struct {
	IBAN          string `mapstructure:"iban" yaml:"iban" validate:"required,notblank"`
	BIC           string `mapstructure:"bic" yaml:"bic,omitempty"`
	AccountNumber string `mapstructure:"account_number" yaml:"account_number,omitempty"`
	Name          string `mapstructure:"name" yaml:"name" validate:"required,notblank"`
}

type InvoiceConfig struct {
	// Prefix defaults to the issue year when empty
	Prefix    string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	DueDays   int    `mapstructure:"due_days" yaml:"due_days" validate:"gte=0,lte=365"`
	Currency  string `mapstructure:"currency" yaml:"currency" validate:"len=3,uppercase"`
	VATNote   string `mapstructure:"vat_note" yaml:"vat_note"`
	ItemsPath string `mapstructure:"items_path" yaml:"items_path" validate:"required"`
}

type RenderConfig struct {
	FontPath       string `mapstructure:"font_path" yaml:"font_path"`
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	AttributionURL string `mapstructure:"attribution_url" yaml:"attribution_url"`
	QRSize         int    `mapstructure:"qr_size" yaml:"qr_size" validate:"gte=64,lte=2048"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=json console"`
}

type ServerConfig struct {
	Address string `mapstructure:"address" yaml:"address" validate:"required"`
}

// LoadOptions selects the sources NewConfig reads from
type LoadOptions struct {
	// ConfigFile is an explicit YAML file; it must exist when set
	ConfigFile string
	// EnvFile is a dotenv file merged into the process environment when present
	EnvFile string
}

// envBindings lists, per key, the variable names accepted besides the
// INVOICE_ prefixed one. They are the names used by existing .env files.
var envBindings = map[string][]string{
	"issuer.name":            {"MY_NAME"},
	"issuer.street":          {"MY_STREET"},
	"issuer.city":            {"MY_CITY"},
	"issuer.tax_id":          {"MY_ICO"},
	"issuer.vat_id":          {"MY_DIC"},
	"issuer.registration":    {"MY_REGISTRATION"},
	"bank.iban":              {"MY_IBAN"},
	"bank.bic":               {"MY_SWIFT"},
	"bank.account_number":    {"MY_ACC_NUMBER_DISPLAY"},
	"bank.name":              {"MY_BANK_NAME"},
	"recipient.name":         {"CLIENT_NAME"},
	"recipient.street":       {"CLIENT_STREET"},
	"recipient.city":         {"CLIENT_CITY"},
	"recipient.tax_id":       {"CLIENT_ICO"},
	"recipient.vat_id":       {"CLIENT_DIC"},
	"invoice.prefix":         {"INVOICE_PREFIX"},
	"invoice.due_days":       {"DUE_DAYS"},
	"invoice.currency":       nil,
	"invoice.vat_note":       nil,
	"invoice.items_path":     {"ITEMS_PATH"},
	"render.font_path":       {"FONT_PATH"},
	"render.output_dir":      {"OUTPUT_DIR"},
	"render.attribution_url": nil,
	"render.qr_size":         nil,
	"logging.level":          {"LOG_LEVEL"},
	"logging.format":         {"LOG_FORMAT"},
	"server.address":         {"SERVER_ADDRESS"},
}

// NewConfig loads configuration from defaults, an optional YAML file, an
// optional dotenv file and the environment, in increasing precedence.
func NewConfig(opts LoadOptions) (*Configuration, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, ierr.WithError(err).
				WithHintf("could not read env file %s", opts.EnvFile).
				Mark(ierr.ErrConfiguration)
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("invoice")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, ierr.WithError(err).
				WithHint("could not read configuration file").
				Mark(ierr.ErrConfiguration)
		}
	}

	for key, legacy := range envBindings {
		names := append([]string{key, envName(key)}, legacy...)
		if err := v.BindEnv(names...); err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrConfiguration)
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, ierr.WithError(err).
			WithHint("configuration has values of the wrong type").
			Mark(ierr.ErrConfiguration)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// Validate checks required identity and bank fields before anything is drawn
func (c Configuration) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, strings.TrimPrefix(fe.Namespace(), "Configuration."))
			}
			return ierr.WithError(err).
				WithHintf("missing or invalid configuration: %s", strings.Join(fields, ", ")).
				Mark(ierr.ErrConfiguration)
		}
		return ierr.WithError(err).Mark(ierr.ErrConfiguration)
	}
	return nil
}

// YAML renders the effective configuration
func (c Configuration) YAML() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrSystem)
	}
	return out, nil
}

// GetDefaultConfig returns the defaults with no identity data filled in
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Invoice: InvoiceConfig{
			DueDays:   14,
			Currency:  "CZK",
			VATNote:   "Nejsem plátce DPH.",
			ItemsPath: "items.csv",
		},
		Render: RenderConfig{
			FontPath:       "DejaVuSans.ttf",
			OutputDir:      ".",
			AttributionURL: "https://github.com/robertvasek/syp-to-sem",
			QRSize:         256,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Server:  ServerConfig{Address: ":8080"},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaultConfig()
	v.SetDefault("invoice.due_days", d.Invoice.DueDays)
	v.SetDefault("invoice.currency", d.Invoice.Currency)
	v.SetDefault("invoice.vat_note", d.Invoice.VATNote)
	v.SetDefault("invoice.items_path", d.Invoice.ItemsPath)
	v.SetDefault("render.font_path", d.Render.FontPath)
	v.SetDefault("render.output_dir", d.Render.OutputDir)
	v.SetDefault("render.attribution_url", d.Render.AttributionURL)
	v.SetDefault("render.qr_size", d.Render.QRSize)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("server.address", d.Server.Address)
}

func envName(key string) string {
	return "INVOICE_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}
