package config_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/pkg/config"
)

var _ = Describe("Config", func() {
	Describe("New", func() {
		It("generates an instance with defaults", func() {
			cfg := config.New()
			Expect(cfg.JobsNum).To(Equal(4))
			Expect(cfg.LLMRetries).To(Equal(10))
			Expect(cfg.PgDB).To(Equal("dwcagent"))
			Expect(cfg.WorkDir).NotTo(BeEmpty())
			Expect(cfg.MatchKVDir).NotTo(BeEmpty())
		})

		It("uses options for setup", func() {
			opts := getOpts()
			cfg := config.New(opts...)
			Expect(cfg.JobsNum).To(Equal(8))
			Expect(cfg.WorkDir).To(Equal("/tmp/dwcagent"))
			Expect(cfg.LLMModel).To(Equal("test-model"))
			Expect(cfg.GbifOrgKey).To(Equal("org-key"))
			Expect(cfg.MinioBucket).To(Equal("dwca"))
		})
	})
})

func getOpts() []config.Option {
	var opts []config.Option
	opts = append(opts, config.OptWorkDir("/tmp/dwcagent"))
	opts = append(opts, config.OptJobsNum(8))
	opts = append(opts, config.OptLLMModel("test-model"))
	opts = append(opts, config.OptLLMAPIKey("key"))
	opts = append(opts, config.OptPgHost("localhost"))
	opts = append(opts, config.OptPgUser("postgres"))
	opts = append(opts, config.OptPgPass(""))
	opts = append(opts, config.OptPgDB("dwcagent"))
	opts = append(opts, config.OptGbifUser("gbif"))
	opts = append(opts, config.OptGbifPass(""))
	opts = append(opts, config.OptGbifOrgKey("org-key"))
	opts = append(opts, config.OptGbifInstallationKey("inst-key"))
	opts = append(opts, config.OptMinioBucket("dwca"))
	return opts
}
