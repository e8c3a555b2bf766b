package cmd

import (
	"time"

	"github.com/foomo/navserver/nav"
	"github.com/foomo/navserver/pkg/repo"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func logLevelFlag(v *viper.Viper) string {
	return v.GetString("log.level")
}

func addLogLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-level", "info", "log level")
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = v.BindEnv("log.level", "LOG_LEVEL")
}

func logFormatFlag(v *viper.Viper) string {
	return v.GetString("log.format")
}

func addLogFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("log-format", "json", "log format")
	_ = v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = v.BindEnv("log.format", "LOG_FORMAT")
}

func addressFlag(v *viper.Viper) string {
	return v.GetString("address")
}

func addAddressFlag(flags *pflag.FlagSet, v *viper.Viper, value string) {
	flags.String("address", value, "Address to bind to (host:port)")
	_ = v.BindPFlag("address", flags.Lookup("address"))
	_ = v.BindEnv("address", "NAVSERVER_ADDRESS")
}

func basePathFlag(v *viper.Viper) string {
	return v.GetString("base_path")
}

func addBasePathFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("base-path", "/navserver", "Base path to export the webserver on")
	_ = v.BindPFlag("base_path", flags.Lookup("base-path"))
	_ = v.BindEnv("base_path", "NAVSERVER_BASE_PATH")
}

func sourceFormatFlag(v *viper.Viper) string {
	return v.GetString("source.format")
}

func addSourceFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("source-format", "", "Format of the source (js, json, yaml, markdown, html), detected from the extension if empty")
	_ = v.BindPFlag("source.format", flags.Lookup("source-format"))
	_ = v.BindEnv("source.format", "NAVSERVER_SOURCE_FORMAT")
}

func maxDepthFlag(v *viper.Viper) int {
	return v.GetInt("max_depth")
}

func addMaxDepthFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("max-depth", nav.DefaultMaxDepth, "Maximum depth of a tree, 0 disables the check")
	_ = v.BindPFlag("max_depth", flags.Lookup("max-depth"))
	_ = v.BindEnv("max_depth", "NAVSERVER_MAX_DEPTH")
}

func uniqueTargetsFlag(v *viper.Viper) bool {
	return v.GetBool("unique_targets")
}

func addUniqueTargetsFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("unique-targets", false, "Reject trees that link a target more than once")
	_ = v.BindPFlag("unique_targets", flags.Lookup("unique-targets"))
	_ = v.BindEnv("unique_targets", "NAVSERVER_UNIQUE_TARGETS")
}

func pagesFlag(v *viper.Viper) string {
	return v.GetString("pages")
}

func addPagesFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("pages", "", "Directory or bucket url (gs://, s3://, azblob://) of the generated pages to check targets against")
	_ = v.BindPFlag("pages", flags.Lookup("pages"))
	_ = v.BindEnv("pages", "NAVSERVER_PAGES")
}

func pollFlag(v *viper.Viper) bool {
	return v.GetBool("poll.enabled")
}

func addPollFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("poll", false, "If true, the address arg will be used to periodically poll the source url")
	_ = v.BindPFlag("poll.enabled", flags.Lookup("poll"))
	_ = v.BindEnv("poll.enabled", "NAVSERVER_POLL")
}

func pollIntervalFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("poll.interval")
}

func addPollIntervalFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("poll-interval", time.Minute, "Specifies the poll interval")
	_ = v.BindPFlag("poll.interval", flags.Lookup("poll-interval"))
	_ = v.BindEnv("poll.interval", "NAVSERVER_POLL_INTERVAL")
}

func historyDirFlag(v *viper.Viper) string {
	return v.GetString("history.dir")
}

func addHistoryDirFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("history-dir", repo.DefaultHistoryDir, "Where to put my data")
	_ = v.BindPFlag("history.dir", flags.Lookup("history-dir"))
	_ = v.BindEnv("history.dir", "NAVSERVER_HISTORY_DIR")
}

func historyLimitFlag(v *viper.Viper) int {
	return v.GetInt("history.limit")
}

func addHistoryLimitFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("history-limit", 2, "Number of history records to keep")
	_ = v.BindPFlag("history.limit", flags.Lookup("history-limit"))
	_ = v.BindEnv("history.limit", "NAVSERVER_HISTORY_LIMIT")
}

func storageTypeFlag(v *viper.Viper) string {
	return v.GetString("storage.type")
}

func addStorageTypeFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-type", "filesystem", "Storage of the history (filesystem, blob)")
	_ = v.BindPFlag("storage.type", flags.Lookup("storage-type"))
	_ = v.BindEnv("storage.type", "NAVSERVER_STORAGE_TYPE")
}

func storageBlobBucketFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.bucket")
}

func addStorageBlobBucketFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-bucket", "", "Bucket url of the blob storage (gs://, s3://, azblob://)")
	_ = v.BindPFlag("storage.blob.bucket", flags.Lookup("storage-blob-bucket"))
	_ = v.BindEnv("storage.blob.bucket", "NAVSERVER_STORAGE_BLOB_BUCKET")
}

func storageBlobPrefixFlag(v *viper.Viper) string {
	return v.GetString("storage.blob.prefix")
}

func addStorageBlobPrefixFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("storage-blob-prefix", "", "Key prefix inside the blob bucket")
	_ = v.BindPFlag("storage.blob.prefix", flags.Lookup("storage-blob-prefix"))
	_ = v.BindEnv("storage.blob.prefix", "NAVSERVER_STORAGE_BLOB_PREFIX")
}

func repositoryTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("repository.timeout")
}

func addRepositoryTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("repository-timeout", 30*time.Second, "Timeout for loading the source")
	_ = v.BindPFlag("repository.timeout", flags.Lookup("repository-timeout"))
	_ = v.BindEnv("repository.timeout", "NAVSERVER_REPOSITORY_TIMEOUT")
}

func socketReadTimeoutFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("socket.read_timeout")
}

func addSocketReadTimeoutFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("read-timeout", 0, "Close socket connections idle for longer, 0 waits forever")
	_ = v.BindPFlag("socket.read_timeout", flags.Lookup("read-timeout"))
	_ = v.BindEnv("socket.read_timeout", "NAVSERVER_SOCKET_READ_TIMEOUT")
}

func gzipLevelFlag(v *viper.Viper) int {
	return v.GetInt("gzip.level")
}

func addGzipLevelFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Int("gzip-level", 6, "Gzip compression level of http responses")
	_ = v.BindPFlag("gzip.level", flags.Lookup("gzip-level"))
	_ = v.BindEnv("gzip.level", "NAVSERVER_GZIP_LEVEL")
}

func gracefulPeriodFlag(v *viper.Viper) time.Duration {
	return v.GetDuration("graceful_period")
}

func addGracefulPeriodFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Duration("graceful-period", 0, "Graceful period before shutting down")
	_ = v.BindPFlag("graceful_period", flags.Lookup("graceful-period"))
	_ = v.BindEnv("graceful_period", "NAVSERVER_GRACEFUL_PERIOD")
}

func serviceHealthzEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.healthz.enabled")
}

func addServiceHealthzEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-healthz-enabled", false, "Enable healthz service")
	_ = v.BindPFlag("service.healthz.enabled", flags.Lookup("service-healthz-enabled"))
}

func servicePrometheusEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.prometheus.enabled")
}

func addServicePrometheusEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-prometheus-enabled", false, "Enable prometheus service")
	_ = v.BindPFlag("service.prometheus.enabled", flags.Lookup("service-prometheus-enabled"))
}

func servicePProfEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("service.pprof.enabled")
}

func addServicePProfEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("service-pprof-enabled", false, "Enable pprof service")
	_ = v.BindPFlag("service.pprof.enabled", flags.Lookup("service-pprof-enabled"))
}

func otelEnabledFlag(v *viper.Viper) bool {
	return v.GetBool("otel.enabled")
}

func addOtelEnabledFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.Bool("otel-enabled", false, "Enable otel service")
	_ = v.BindPFlag("otel.enabled", flags.Lookup("otel-enabled"))
	_ = v.BindEnv("otel.enabled", "OTEL_ENABLED")
}

func outputFormatFlag(v *viper.Viper) string {
	return v.GetString("output.format")
}

func addOutputFormatFlag(flags *pflag.FlagSet, v *viper.Viper) {
	flags.String("format", "text", "Output format (html, markdown, js, json, text)")
	_ = v.BindPFlag("output.format", flags.Lookup("format"))
}
