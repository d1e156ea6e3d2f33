package utils

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Commands understood by the command line
var Commands = []string{"curate", "report", "compare"}

func isCommand(arg string) bool {
	for _, c := range Commands {
		if arg == c {
			return true
		}
	}
	return false
}

// ParseArguments converts command-line arguments (without the program name)
// into a map of flags and values. The command, if any, is stored under "command".
func ParseArguments(argv []string) map[string]string {
	args := make(map[string]string)

	commandIndex := -1
	for i, arg := range argv {
		if isCommand(arg) {
			args["command"] = arg
			commandIndex = i
			break
		}
	}

	for i := 0; i < len(argv); i++ {
		if i == commandIndex {
			continue
		}

		arg := argv[i]

		// --key=value
		if strings.HasPrefix(arg, "--") && strings.Contains(arg, "=") {
			parts := strings.SplitN(arg, "=", 2)
			args[strings.TrimPrefix(parts[0], "--")] = parts[1]
			continue
		}

		// --key value, or a boolean --key
		if strings.HasPrefix(arg, "--") {
			flagName := strings.TrimPrefix(arg, "--")
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "--") || i+1 == commandIndex {
				args[flagName] = "true"
			} else {
				args[flagName] = argv[i+1]
				i++
			}
		}
	}

	return args
}

// PrintUsage outputs the command-line usage instructions
func PrintUsage() {
	fmt.Printf("Usage:\n")
	fmt.Printf("  %s curate --root=DIR [--output=DIR] [--catalog=DSN] [--config=FILE] [--workers=N] [--aspect=F]\n", os.Args[0])
	fmt.Printf("         [--formats=jpg,png] [--recursive] [--exif] [--dry-run] [--debug] [--logfile=PATH]\n")
	fmt.Printf("  %s report --root=DIR [--config=FILE] [--workers=N] [--aspect=F] [--formats=jpg,png] [--recursive]\n", os.Args[0])
	fmt.Printf("  %s compare --image=PATH --other=PATH [--config=FILE] [--aspect=F]\n", os.Args[0])
	fmt.Printf("\nParameters:\n")
	fmt.Printf("  --root        : Folder whose images are deduplicated\n")
	fmt.Printf("  --output      : Gallery folder relative to root (default: assets/gallery)\n")
	fmt.Printf("  --catalog     : SQLite file or postgres:// URL recording the run\n")
	fmt.Printf("  --config      : TOML file with similarity thresholds\n")
	fmt.Printf("  --workers     : Number of decode and compare workers (default: CPU count)\n")
	fmt.Printf("  --aspect      : Maximum aspect ratio difference (default: 0.06)\n")
	fmt.Printf("  --formats     : Comma separated extensions to consider (default: jpeg,jpg,png)\n")
	fmt.Printf("  --recursive   : Include images in subfolders\n")
	fmt.Printf("  --exif        : Read capture dates with exiftool\n")
	fmt.Printf("  --dry-run     : Report what would change without touching files\n")
	fmt.Printf("  --debug       : Enable debug mode (logs detailed information)\n")
	fmt.Printf("  --logfile     : Write the log to this file\n")
	fmt.Printf("\nExamples:\n")
	fmt.Printf("  %s curate --root=./site --catalog=curator.db --debug\n", os.Args[0])
	fmt.Printf("  %s compare --image=a.jpg --other=b.jpg\n", os.Args[0])
}

// ParseBool reads a boolean flag value; a flag given without a value is true
func ParseBool(value string) (bool, error) {
	if value == "" {
		return true, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean value '%s'", value)
	}
	return b, nil
}

// ParsePositiveInt parses a strictly positive integer
func ParsePositiveInt(value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid positive integer '%s'", value)
	}
	return n, nil
}

// ParseFloatInRange parses a float and checks it lies in [lo, hi]
func ParseFloatInRange(value string, lo, hi float64) (float64, error) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < lo || f > hi {
		return 0, fmt.Errorf("invalid value '%s', expected a number between %g and %g", value, lo, hi)
	}
	return f, nil
}

// ParseExtensions turns "jpg, .PNG" into [".jpg", ".png"], dropping blanks
// and duplicates
func ParseExtensions(value string) []string {
	var exts []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(value, ",") {
		ext := strings.ToLower(strings.TrimSpace(part))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		if seen[ext] {
			continue
		}
		seen[ext] = true
		exts = append(exts, ext)
	}
	return exts
}
