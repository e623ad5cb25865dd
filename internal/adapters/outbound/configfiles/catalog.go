package configfiles

// Entry is one well-known project file.
type Entry struct {
	Name        string
	Category    string
	Required    bool
	Dir         bool
	Description string
}

// Catalog categories.
const (
	CategoryVersionControl = "version_control"
	CategoryPythonConfig   = "python_config"
	CategoryDependencies   = "dependencies"
	CategoryEnvironment    = "environment"
	CategoryPythonVersion  = "python_version"
	CategoryCodeQuality    = "code_quality"
	CategoryTesting        = "testing"
	CategoryCICD           = "ci_cd"
	CategoryDocker         = "docker"
	CategoryDocumentation  = "documentation"
)

// Catalog lists the files a scan looks for, in report order.
var Catalog = []Entry{
	{Name: ".gitignore", Category: CategoryVersionControl, Required: true, Description: "Git ignore patterns"},
	{Name: ".gitattributes", Category: CategoryVersionControl, Description: "Git attributes for line endings and diffs"},
	{Name: "pyproject.toml", Category: CategoryPythonConfig, Description: "Modern Python project configuration (PEP 518)"},
	{Name: "setup.py", Category: CategoryPythonConfig, Description: "Legacy Python package setup"},
	{Name: "setup.cfg", Category: CategoryPythonConfig, Description: "Python package metadata and tool configuration"},
	{Name: "MANIFEST.in", Category: CategoryPythonConfig, Description: "Package manifest for non-Python files"},
	{Name: "requirements.txt", Category: CategoryDependencies, Description: "Python dependencies (pip)"},
	{Name: "requirements-dev.txt", Category: CategoryDependencies, Description: "Development dependencies"},
	{Name: "Pipfile", Category: CategoryDependencies, Description: "Pipenv dependency specification"},
	{Name: "Pipfile.lock", Category: CategoryDependencies, Description: "Pipenv lock file"},
	{Name: "poetry.lock", Category: CategoryDependencies, Description: "Poetry lock file"},
	{Name: ".env", Category: CategoryEnvironment, Description: "Environment variables (should not be committed)"},
	{Name: ".env.example", Category: CategoryEnvironment, Description: "Example environment variables template"},
	{Name: ".python-version", Category: CategoryPythonVersion, Description: "Python version specification (pyenv)"},
	{Name: "runtime.txt", Category: CategoryPythonVersion, Description: "Python version for deployment platforms"},
	{Name: ".editorconfig", Category: CategoryCodeQuality, Description: "Editor configuration for consistent code style"},
	{Name: ".flake8", Category: CategoryCodeQuality, Description: "Flake8 linter configuration"},
	{Name: ".pylintrc", Category: CategoryCodeQuality, Description: "Pylint configuration"},
	{Name: "mypy.ini", Category: CategoryCodeQuality, Description: "MyPy type checker configuration"},
	{Name: ".pre-commit-config.yaml", Category: CategoryCodeQuality, Description: "Pre-commit hooks configuration"},
	{Name: "pytest.ini", Category: CategoryTesting, Description: "Pytest configuration"},
	{Name: "tox.ini", Category: CategoryTesting, Description: "Tox testing automation configuration"},
	{Name: ".coveragerc", Category: CategoryTesting, Description: "Coverage.py configuration"},
	{Name: ".travis.yml", Category: CategoryCICD, Description: "Travis CI configuration"},
	{Name: ".gitlab-ci.yml", Category: CategoryCICD, Description: "GitLab CI configuration"},
	{Name: "Jenkinsfile", Category: CategoryCICD, Description: "Jenkins pipeline configuration"},
	{Name: ".github/workflows", Category: CategoryCICD, Dir: true, Description: "GitHub Actions workflows"},
	{Name: "Dockerfile", Category: CategoryDocker, Description: "Docker image definition"},
	{Name: "docker-compose.yml", Category: CategoryDocker, Description: "Docker Compose configuration"},
	{Name: ".dockerignore", Category: CategoryDocker, Description: "Docker build ignore patterns"},
	{Name: "README.md", Category: CategoryDocumentation, Required: true, Description: "Project documentation"},
	{Name: "LICENSE", Category: CategoryDocumentation, Description: "Project license"},
	{Name: "CHANGELOG.md", Category: CategoryDocumentation, Description: "Project changelog"},
	{Name: "CONTRIBUTING.md", Category: CategoryDocumentation, Description: "Contribution guidelines"},
}
