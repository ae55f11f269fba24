package toolio_test

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/gnames/dwcagent/internal/ent/store"
	"github.com/gnames/dwcagent/internal/ent/tool"
	"github.com/gnames/dwcagent/internal/io/memio"
	"github.com/gnames/dwcagent/internal/io/notifyio"
	"github.com/gnames/dwcagent/internal/io/sandboxio"
	"github.com/gnames/dwcagent/internal/io/taskio"
	"github.com/gnames/dwcagent/internal/io/toolio"
	"github.com/gnames/dwcagent/internal/io/validio"
	"github.com/gnames/dwcagent/pkg/config"
	"github.com/gnames/dwcagent/pkg/ent/grid"
	"github.com/gnames/dwcagent/pkg/ent/model"
)

// fakeGBIFRegistry answers registration calls without the network.
type fakeGBIFRegistry struct{}

func (f *fakeGBIFRegistry) RegisterDataset(
	_ context.Context, _, _ string,
) (string, error) {
	return "key-1", nil
}

func (f *fakeGBIFRegistry) RegisterEndpoint(
	_ context.Context, key, _ string,
) (string, error) {
	return "https://www.gbif.org/dataset/" + key, nil
}

var _ = Describe("Toolio", func() {
	var (
		ctx      context.Context
		st       store.Store
		registry tool.Registry
		ds       model.Dataset
		ag       model.Agent
	)

	BeforeEach(func() {
		ctx = context.Background()
		st = memio.New()
		cfg := config.New()
		registry = toolio.NewRegistry(
			cfg, st,
			validio.New(cfg, st, nil),
			sandboxio.New(st),
			nil, nil, nil, nil, nil,
			notifyio.New(cfg),
		)
		ds = model.Dataset{}
		Expect(st.CreateDataset(&ds)).To(Succeed())
		ag = model.Agent{DatasetID: ds.ID}
		Expect(st.CreateAgent(&ag)).To(Succeed())
	})

	run := func(name, args string) string {
		t, ok := registry.Tool(name)
		Expect(ok).To(BeTrue(), name)
		return t.Run(ctx, &ag, args)
	}

	It("registers every workflow tool", func() {
		for _, name := range []string{
			"Validate", "Transform", "RollBack", "SetBasicMetadata",
			"SetEML", "CompleteTask", "BuildArchive", "Publish",
			"ValidateArchive", "Notify",
		} {
			_, ok := registry.Tool(name)
			Expect(ok).To(BeTrue(), name)
		}
	})

	Describe("Validate", func() {
		It("renders a report for the dataset's tables", func() {
			t := model.Table{
				DatasetID: ds.ID,
				Title:     "Observations",
				Grid: grid.New(
					[]string{"occurrenceID", "scientificName",
						"basisOfRecord"},
					[][]string{
						{"a1", "Puma concolor", "HumanObservation"},
					},
				),
			}
			Expect(st.CreateTable(&t)).To(Succeed())

			out := run("Validate", "{}")
			Expect(out).To(HavePrefix("validation report:"))
			Expect(out).To(ContainSubstring("Occurrence Core"))
		})
	})

	Describe("Transform", func() {
		It("runs a script and returns its output", func() {
			out := run("Transform", `{"code": "print(\"ok\")"}`)
			Expect(out).To(Equal("ok\n"))
		})

		It("strips code fences", func() {
			out := run("Transform",
				`{"code": "`+"```python\\nprint(\\\"ok\\\")\\n```"+`"}`)
			Expect(out).To(Equal("ok\n"))
		})

		It("reports a silent success", func() {
			out := run("Transform", `{"code": "x = 1"}`)
			Expect(out).To(Equal("Executed successfully without errors."))
		})

		It("surfaces script failures as Error text", func() {
			out := run("Transform", `{"code": "boom()"}`)
			Expect(out).To(HavePrefix("Error: "))
		})
	})

	Describe("SetBasicMetadata", func() {
		It("saves title and description", func() {
			out := run("SetBasicMetadata", `{
				"title": "Costa Rica mammals",
				"description": "Camera trap records.",
				"core_type": "occurrence"
			}`)
			Expect(out).To(
				Equal("Basic Metadata has been successfully set."))

			saved, err := st.Dataset(ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Title).To(Equal("Costa Rica mammals"))
			Expect(saved.Description).To(Equal("Camera trap records."))
			Expect(saved.CoreType).To(Equal(model.CoreOccurrence))
			Expect(saved.Rejected()).To(BeFalse())
		})

		It("appends structure notes across calls", func() {
			run("SetBasicMetadata", `{
				"title": "t", "description": "d",
				"structure_notes": "merged cells in sheet 2"
			}`)
			run("SetBasicMetadata", `{
				"title": "t", "description": "d",
				"structure_notes": "dates were Excel serials"
			}`)
			saved, err := st.Dataset(ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.StructureNotes).To(Equal(
				"merged cells in sheet 2\ndates were Excel serials"))
		})

		It("rejects a dataset marked unsuitable", func() {
			run("SetBasicMetadata", `{
				"title": "t", "description": "d",
				"suitable_for_publication": false
			}`)
			saved, err := st.Dataset(ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Rejected()).To(BeTrue())
		})

		It("complains about malformed arguments", func() {
			out := run("SetBasicMetadata", `not json`)
			Expect(out).To(HavePrefix("Error: "))
		})
	})

	Describe("SetEML", func() {
		It("merges only the supplied fields", func() {
			run("SetEML", `{"temporal_scope": "1990-2020"}`)
			run("SetEML", `{"geographic_scope": "Costa Rica"}`)

			saved, err := st.Dataset(ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.EML.TemporalScope).To(Equal("1990-2020"))
			Expect(saved.EML.GeographicScope).To(Equal("Costa Rica"))
		})

		It("replaces the user list", func() {
			run("SetEML", `{"users": [{
				"first_name": "Ada", "last_name": "Lovelace",
				"email": "ada@example.org",
				"orcid": "0000-0002-1825-0097"
			}]}`)
			saved, err := st.Dataset(ds.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.EML.Users).To(HaveLen(1))
			Expect(saved.EML.Users[0].LastName).To(Equal("Lovelace"))
		})
	})

	Describe("CompleteTask", func() {
		It("freezes the agent", func() {
			out := run("CompleteTask", "{}")
			Expect(out).To(ContainSubstring("marked as complete"))

			saved, err := st.Agent(ag.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.Completed()).To(BeTrue())
		})
	})

	Describe("Publish", func() {
		It("requires a built archive first", func() {
			out := run("Publish", "{}")
			Expect(out).To(Equal("Error: Dataset has no archive URL. " +
				"Please run BuildArchive first."))
		})

		Context("with a registered archive", func() {
			var (
				pubReg tool.Registry
				tasks  []model.Task
			)

			BeforeEach(func() {
				cfg := config.New()
				pubReg = toolio.NewRegistry(
					cfg, st,
					validio.New(cfg, st, nil),
					sandboxio.New(st),
					nil, &fakeGBIFRegistry{}, nil, nil, nil,
					notifyio.New(cfg),
				)
				Expect(taskio.Load(st)).To(Succeed())
				var err error
				tasks, err = st.Tasks()
				Expect(err).NotTo(HaveOccurred())

				ds.ArchiveURL = "https://example.org/archive.zip"
				Expect(st.SaveDataset(&ds)).To(Succeed())
			})

			publish := func() string {
				t, ok := pubReg.Tool("Publish")
				Expect(ok).To(BeTrue())
				return t.Run(ctx, &ag, "{}")
			}

			It("completes the agent when not on the final task", func() {
				ag.TaskID = tasks[0].ID
				Expect(st.SaveAgent(&ag)).To(Succeed())

				out := publish()
				Expect(out).To(HavePrefix(
					"Successfully registered dataset with GBIF."))

				fresh, err := st.Agent(ag.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(fresh.CompletedAt).NotTo(BeNil())
			})

			It("leaves the final-task agent open", func() {
				ag.TaskID = tasks[len(tasks)-1].ID
				Expect(st.SaveAgent(&ag)).To(Succeed())

				out := publish()
				Expect(out).To(HavePrefix(
					"Successfully registered dataset with GBIF."))

				fresh, err := st.Agent(ag.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(fresh.CompletedAt).To(BeNil())

				saved, err := st.Dataset(ds.ID)
				Expect(err).NotTo(HaveOccurred())
				Expect(saved.PublishedAt).NotTo(BeNil())
				Expect(saved.RegistryURL).To(
					Equal("https://www.gbif.org/dataset/key-1"))
			})
		})
	})

	Describe("Notify", func() {
		It("acknowledges without failing", func() {
			out := run("Notify",
				`{"message": "needs a human", "urgent": true}`)
			Expect(out).To(Equal("Operators have been notified."))
		})
	})

	Describe("RollBack", func() {
		It("refuses when no source files survive", func() {
			out := run("RollBack", "{}")
			Expect(out).To(HavePrefix("Error: "))
		})
	})
})
