package scoring

// The lookup tables below are data, not logic: extending them must never
// require touching the scoring or hint functions. All keys are normalized
// package names.

// legacyReplacements maps Python 2 era packages to their maintained
// successors. An empty value means the functionality moved into the
// standard library and the dependency should simply be removed.
var legacyReplacements = map[string]string{
	"mysql-python":      "PyMySQL",
	"python-memcached":  "pymemcache",
	"pycrypto":          "pycryptodome",
	"pil":               "Pillow",
	"distribute":        "setuptools",
	"unittest2":         "",
	"mock":              "",
	"futures":           "",
	"enum34":            "",
	"pathlib":           "",
	"configparser":      "",
	"ipaddress":         "",
	"six":               "",
	"typing":            "",
	"pyyaml":            "PyYAML",
	"beautifulsoup":     "beautifulsoup4",
	"feedparser":        "feedparser",
	"markdown2":         "markdown",
	"py-bcrypt":         "bcrypt",
	"python-dateutil":   "python-dateutil",
	"pytz":              "zoneinfo",
	"typing-extensions": "typing-extensions",
}

// modernAlternatives suggests actively developed libraries that cover the
// same ground as widely used but aging choices.
var modernAlternatives = map[string][]string{
	"requests":        {"httpx", "aiohttp"},
	"urllib3":         {"httpx", "aiohttp"},
	"json":            {"orjson", "ujson"},
	"pickle":          {"dill", "cloudpickle"},
	"csv":             {"pandas", "polars"},
	"sqlite3":         {"sqlalchemy", "databases"},
	"threading":       {"asyncio", "concurrent.futures"},
	"multiprocessing": {"concurrent.futures", "ray"},
}

// performanceUpgrades holds optional speed-focused advice, emitted only
// when the caller asks for performance hints.
var performanceUpgrades = map[string]string{
	"json":     "Use orjson for 2-3x faster JSON processing",
	"pickle":   "Use cloudpickle for better serialization",
	"requests": "Use httpx for async HTTP requests",
	"pandas":   "Consider polars for faster data processing",
	"numpy":    "Ensure you have optimized BLAS libraries",
}
