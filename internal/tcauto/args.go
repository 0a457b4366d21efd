package tcauto

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrMissingArgument = errors.New("tcauto: missing argument")

// ArgBuilder turns a named-argument map into a TcAutomation.exe
// command line. Builders validate required arguments so nothing is
// spawned on malformed input.
type ArgBuilder func(args map[string]any) ([]string, error)

func BuildArgs(args map[string]any) ([]string, error) {
	solution, err := requiredString(args, "solutionPath")
	if err != nil {
		return nil, err
	}
	out := []string{"build", "--solution", solution}
	if boolArg(args, "clean", true) {
		out = append(out, "--clean")
	}
	if v := stringArg(args, "tcVersion"); v != "" {
		out = append(out, "--tcversion", v)
	}
	return out, nil
}

func InfoArgs(args map[string]any) ([]string, error) {
	solution, err := requiredString(args, "solutionPath")
	if err != nil {
		return nil, err
	}
	return []string{"info", "--solution", solution}, nil
}

func ReadVariableArgs(args map[string]any) ([]string, error) {
	path, err := requiredString(args, "variablePath")
	if err != nil {
		return nil, err
	}
	out := []string{"readvar", "--path", path}
	if port, ok := intArg(args, "amsPort"); ok {
		out = append(out, "--port", strconv.Itoa(port))
	}
	return out, nil
}

func WriteVariableArgs(args map[string]any) ([]string, error) {
	path, err := requiredString(args, "variablePath")
	if err != nil {
		return nil, err
	}
	value, err := requiredString(args, "value")
	if err != nil {
		return nil, err
	}
	out := []string{"writevar", "--path", path, "--value", value}
	if t := stringArg(args, "valueType"); t != "" {
		out = append(out, "--type", t)
	}
	if port, ok := intArg(args, "amsPort"); ok {
		out = append(out, "--port", strconv.Itoa(port))
	}
	return out, nil
}

func SetRuntimeModeArgs(args map[string]any) ([]string, error) {
	mode, err := requiredString(args, "mode")
	if err != nil {
		return nil, err
	}
	if mode != "run" && mode != "config" {
		return nil, fmt.Errorf("tcauto: mode must be \"run\" or \"config\", got %q", mode)
	}
	return []string{"setmode", "--mode", mode}, nil
}

func RestartRuntimeArgs(args map[string]any) ([]string, error) {
	out := []string{"restart"}
	if port, ok := intArg(args, "amsPort"); ok {
		out = append(out, "--port", strconv.Itoa(port))
	}
	return out, nil
}

func ActivateConfigArgs(args map[string]any) ([]string, error) {
	solution, err := requiredString(args, "solutionPath")
	if err != nil {
		return nil, err
	}
	return []string{"activate", "--solution", solution}, nil
}

func DeployArgs(args map[string]any) ([]string, error) {
	solution, err := requiredString(args, "solutionPath")
	if err != nil {
		return nil, err
	}
	out := []string{"deploy", "--solution", solution}
	if target := stringArg(args, "targetNetId"); target != "" {
		out = append(out, "--target", target)
	}
	if boolArg(args, "clean", true) {
		out = append(out, "--clean")
	}
	return out, nil
}

func requiredString(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingArgument, key)
	}
	return v, nil
}

func stringArg(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func boolArg(args map[string]any, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// intArg tolerates the float64 that JSON decoding produces.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
