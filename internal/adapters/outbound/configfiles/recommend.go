package configfiles

import (
	"os"
	"path/filepath"

	"github.com/abdidvp/harmonizer/internal/adapters/outbound/gitrepo"
)

// Recommendation suggests a file to add.
type Recommendation struct {
	File   string `json:"file"`
	Reason string `json:"reason"`
}

// Recommendations suggests files based on what the project already has.
func Recommendations(projectPath string) []Recommendation {
	has := func(name string) bool {
		_, err := os.Stat(filepath.Join(projectPath, name))
		return err == nil
	}
	isGit := gitrepo.New(projectPath).IsGitRepo()

	var out []Recommendation
	if !has(".gitignore") {
		out = append(out, Recommendation{".gitignore", "Prevents committing unwanted files to version control"})
	}
	if !has("README.md") {
		out = append(out, Recommendation{"README.md", "Essential documentation for understanding the project"})
	}
	if isGit && !has(".editorconfig") {
		out = append(out, Recommendation{".editorconfig", "Ensures consistent code style across different editors"})
	}
	if has(".env") && !has(".env.example") {
		out = append(out, Recommendation{".env.example", "Template for required environment variables (without secrets)"})
	}
	if has("tests") && !has("pytest.ini") {
		out = append(out, Recommendation{"pytest.ini", "Configure pytest behavior and test discovery"})
	}
	if isGit && !has(".pre-commit-config.yaml") {
		out = append(out, Recommendation{".pre-commit-config.yaml", "Automated code quality checks before commits"})
	}
	return out
}
