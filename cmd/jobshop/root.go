package main

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"jobShop/internal/jobshop"
)

// v хранит итоговую конфигурацию: флаги > переменные JOBSHOP_* > файл --config > значения по умолчанию.
var v = viper.New()

var rootCmd = &cobra.Command{
	Use:           "jobshop",
	Short:         "Genetic-algorithm job-shop scheduler",
	Long:          "jobshop evolves operation orderings into a schedule that minimizes makespan on a job-shop problem.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml/json/toml) with flag values")
	flags.StringP("problem", "p", "", "problem file (.yaml, .json, .hcl, .txt/.jsp); empty = built-in 6x3 instance")
	flags.StringSlice("machines", nil, "declared machine ids; references to other machines are rejected")
	flags.String("log-level", "info", "log level: trace, debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")

	registerSolveCommand(rootCmd)
	registerBoundsCommand(rootCmd)
	registerValidateCommand(rootCmd)
	registerBenchCommand(rootCmd)
}

func initConfig(cmd *cobra.Command) error {
	v.SetEnvPrefix("JOBSHOP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Привязываются только флаги выполняемой команды, поэтому одноимённые
	// флаги разных подкоманд не конфликтуют.
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return nil
}

func newLogger(levelStr, formatStr string, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	switch formatStr {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", formatStr)
	}
	return log, nil
}

func commandLogger(cmd *cobra.Command) (*logrus.Logger, error) {
	return newLogger(v.GetString("log-level"), v.GetString("log-format"), cmd.ErrOrStderr())
}

// loadProblem читает задачу из --problem или возвращает встроенный экземпляр.
func loadProblem(log logrus.FieldLogger) (*jobshop.Problem, error) {
	opts := machineOptions()

	path := v.GetString("problem")
	if path == "" {
		log.Debug("no problem file given, using built-in instance")
		if len(opts) == 0 {
			return jobshop.DefaultProblem(), nil
		}
		return jobshop.NewProblem(jobshop.DefaultProblem().Jobs(), opts...)
	}

	p, err := jobshop.LoadProblem(path, opts...)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"path":     path,
		"jobs":     p.NumJobs(),
		"machines": p.NumMachines(),
		"ops":      p.NumOps(),
	}).Debug("problem loaded")
	return p, nil
}

// machineOptions возвращает WithMachines для --machines / JOBSHOP_MACHINES.
// Из переменной окружения viper отдаёт строку, которую GetStringSlice режет
// только по пробелам, поэтому запятые разбираются здесь.
func machineOptions() []jobshop.ProblemOption {
	machines := machineList(v.GetStringSlice("machines"))
	if len(machines) == 0 {
		return nil
	}
	return []jobshop.ProblemOption{jobshop.WithMachines(machines...)}
}

func machineList(raw []string) []string {
	var out []string
	for _, item := range raw {
		out = append(out, strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})...)
	}
	return out
}
