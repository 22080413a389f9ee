package state_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"modelmove/server/errors"
	. "modelmove/server/state"
	"modelmove/utils"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Syncers", func() {
	ctx := context.Background()

	sample := func() *ProjectState {
		model := NewModelState("oldapp", "Foo", []Field{{Name: "id", Type: "serial", PrimaryKey: true}})
		model.UniqueTogether = [][]string{{"id"}}
		return NewProjectState(model)
	}

	itPersists := func(syncerFactory func() Syncer) {
		It("returns an empty state when nothing is saved", func() {
			projectState, err := syncerFactory().Get(ctx)
			Expect(err).To(BeNil())
			Expect(projectState.Models).To(BeEmpty())
		})

		It("reads back what was saved", func() {
			syncer := syncerFactory()
			Expect(syncer.Save(ctx, sample())).To(Succeed())

			projectState, err := syncer.Get(ctx)
			Expect(err).To(BeNil())
			model, err := projectState.Model("oldapp", "Foo")
			Expect(err).To(BeNil())
			Expect(model.Fields).To(Equal([]Field{{Name: "id", Type: "serial", PrimaryKey: true}}))
			Expect(model.UniqueTogether).To(Equal([][]string{{"id"}}))
		})
	}

	Context("File syncer", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "modelmove-state")
			Expect(err).To(BeNil())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		itPersists(func() Syncer {
			return NewFileSyncer(filepath.Join(dir, "nested", "state.json"))
		})

		It("fails on a corrupted file", func() {
			path := filepath.Join(dir, "state.json")
			Expect(os.WriteFile(path, []byte("{"), 0644)).To(Succeed())

			_, err := NewFileSyncer(path).Get(ctx)
			Expect(errors.CodeOf(err)).To(Equal(ErrStateStorage))
		})
	})

	Context("Redis syncer", func() {
		var server *miniredis.Miniredis

		BeforeEach(func() {
			var err error
			server, err = miniredis.Run()
			Expect(err).To(BeNil())
		})

		AfterEach(func() {
			server.Close()
		})

		itPersists(func() Syncer {
			return NewRedisSyncer(redis.NewClient(&redis.Options{Addr: server.Addr()}))
		})

		It("stores the state under the configured key", func() {
			syncer, err := NewRedisSyncerFromUrl("redis://"+server.Addr()+"/0", WithKey("project:schema"))
			Expect(err).To(BeNil())
			Expect(syncer.Save(ctx, sample())).To(Succeed())

			Expect(server.Exists("project:schema")).To(BeTrue())
			Expect(server.Exists("modelmove:state")).To(BeFalse())
		})

		It("fails on a malformed url", func() {
			_, err := NewRedisSyncerFromUrl("not-a-url")
			Expect(errors.CodeOf(err)).To(Equal(ErrStateStorage))
		})
	})

	Context("Memory syncer", func() {
		itPersists(func() Syncer {
			return NewMemorySyncer(nil)
		})

		It("isolates saved states from later changes", func() {
			syncer := NewMemorySyncer(nil)
			projectState := sample()
			Expect(syncer.Save(ctx, projectState)).To(Succeed())
			projectState.RemoveModel("oldapp", "Foo")

			stored, _ := syncer.Get(ctx)
			Expect(stored.HasModel("oldapp", "Foo")).To(BeTrue())
		})
	})

	It("is chosen by configuration", func() {
		syncer, err := NewSyncer(&utils.AppConfig{StateBackend: utils.StateBackendFile, StateFile: "state.json"})
		Expect(err).To(BeNil())
		Expect(syncer).To(BeAssignableToTypeOf(&FileSyncer{}))

		_, err = NewSyncer(&utils.AppConfig{StateBackend: "etcd"})
		Expect(errors.CodeOf(err)).To(Equal(ErrStateStorage))
	})
})
