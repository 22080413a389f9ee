package utils_test

import (
	"os"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"modelmove/utils"
)

var _ = Describe("Generic helpers", func() {
	It("compares string slices in order", func() {
		Expect(utils.Equal([]string{"title", "position"}, []string{"title", "position"})).To(BeTrue())
		Expect(utils.Equal([]string{"title", "position"}, []string{"position", "title"})).To(BeFalse())
		Expect(utils.Equal(nil, []string{})).To(BeTrue())
	})

	It("computes ordered differences", func() {
		Expect(utils.Difference([]string{"a", "b", "c"}, []string{"b"})).To(Equal([]string{"a", "c"}))
		Expect(utils.Difference(nil, []string{"b"})).To(BeEmpty())
	})

	It("finds items", func() {
		Expect(utils.IndexOf([]string{"a", "b"}, "b")).To(Equal(1))
		Expect(utils.Contains([]string{"a", "b"}, "c")).To(BeFalse())
	})
})

var _ = Describe("Config", func() {
	AfterEach(func() {
		os.Unsetenv("STATE_BACKEND")
		os.Unsetenv("REDIS_URL")
	})

	It("reads overrides from the environment", func() {
		os.Setenv("STATE_BACKEND", utils.StateBackendRedis)
		os.Setenv("REDIS_URL", "redis://cache:6379/2")

		config := utils.GetConfig()
		Expect(config.StateBackend).To(Equal(utils.StateBackendRedis))
		Expect(config.RedisUrl).To(Equal("redis://cache:6379/2"))
		Expect(config.UrlPrefix).NotTo(BeEmpty())
	})
})
