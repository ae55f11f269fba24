package taskio_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/internal/io/memio"
	"github.com/gnames/dwcagent/internal/io/taskio"
)

var _ = Describe("Load", func() {
	It("loads the fixture tasks in order", func() {
		st := memio.New()
		Expect(taskio.Load(st)).To(Succeed())

		tasks, err := st.Tasks()
		Expect(err).NotTo(HaveOccurred())
		Expect(tasks).To(HaveLen(6))

		names := make([]string, len(tasks))
		for i, t := range tasks {
			names[i] = t.Name
			Expect(t.Order).To(Equal(i + 1))
			Expect(t.Text).NotTo(BeEmpty())
			Expect(t.Tools).NotTo(BeEmpty())
		}
		Expect(names).To(Equal([]string{
			"clean_tables", "basic_metadata", "darwin_core_mapping",
			"eml_metadata", "build_and_check_archive", "publish",
		}))
	})

	It("keeps task IDs stable across reloads", func() {
		st := memio.New()
		Expect(taskio.Load(st)).To(Succeed())
		before, err := st.Tasks()
		Expect(err).NotTo(HaveOccurred())

		Expect(taskio.Load(st)).To(Succeed())
		after, err := st.Tasks()
		Expect(err).NotTo(HaveOccurred())

		Expect(after).To(HaveLen(len(before)))
		for i := range before {
			Expect(after[i].ID).To(Equal(before[i].ID))
		}
	})
})
