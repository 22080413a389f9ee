package transactions_test

import (
	"context"
	"database/sql"
	"fmt"

	"modelmove/server/state"
	. "modelmove/server/transactions"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

type fakeTransaction struct {
	executed   []string
	committed  bool
	rolledBack bool
	commitErr  error
}

func (ft *fakeTransaction) Exec(query string, args ...interface{}) (sql.Result, error) {
	ft.executed = append(ft.executed, query)
	return nil, nil
}

func (ft *fakeTransaction) Commit() error {
	if ft.commitErr != nil {
		return ft.commitErr
	}
	ft.committed = true
	return nil
}

func (ft *fakeTransaction) Rollback() error {
	ft.rolledBack = true
	return nil
}

type fakeTransactionManager struct {
	transaction *fakeTransaction
}

func (fm *fakeTransactionManager) BeginTransaction(ctx context.Context) (DbTransaction, error) {
	return fm.transaction, nil
}

var _ = Describe("GlobalTransactionManager", func() {
	ctx := context.Background()
	var syncer *state.MemorySyncer
	var dbTransaction *fakeTransaction
	var manager *GlobalTransactionManager

	foo := func() *state.ModelState {
		return state.NewModelState("oldapp", "Foo", []state.Field{{Name: "id", Type: "serial", PrimaryKey: true}})
	}

	BeforeEach(func() {
		syncer = state.NewMemorySyncer(nil)
		dbTransaction = &fakeTransaction{}
		manager = NewGlobalTransactionManager(syncer, &fakeTransactionManager{transaction: dbTransaction})
	})

	stage := func(transaction *GlobalTransaction) {
		Expect(transaction.StateTransaction.Syncer().Save(ctx, state.NewProjectState(foo()))).To(Succeed())
		Expect(transaction.Editor().CreateModel(foo())).To(Succeed())
	}

	It("saves the staged state once the database commits", func() {
		transaction, err := manager.BeginTransaction(ctx)
		Expect(err).To(BeNil())
		stage(transaction)

		stored, _ := syncer.Get(ctx)
		Expect(stored.Keys()).To(BeEmpty())

		Expect(manager.CommitTransaction(ctx, transaction)).To(Succeed())
		Expect(dbTransaction.committed).To(BeTrue())
		Expect(dbTransaction.executed).To(HaveLen(1))
		Expect(transaction.StateTransaction.State()).To(Equal(Committed))

		stored, _ = syncer.Get(ctx)
		Expect(stored.HasModel("oldapp", "Foo")).To(BeTrue())
	})

	It("drops the staged state on rollback", func() {
		transaction, _ := manager.BeginTransaction(ctx)
		stage(transaction)

		Expect(manager.RollbackTransaction(transaction)).To(Succeed())
		Expect(dbTransaction.rolledBack).To(BeTrue())
		Expect(transaction.StateTransaction.InitialState().Keys()).To(BeEmpty())

		stored, _ := syncer.Get(ctx)
		Expect(stored.Keys()).To(BeEmpty())
	})

	It("keeps the stored state when the commit fails", func() {
		dbTransaction.commitErr = fmt.Errorf("serialization failure")
		transaction, _ := manager.BeginTransaction(ctx)
		stage(transaction)

		err := manager.CommitTransaction(ctx, transaction)
		Expect(err).To(BeAssignableToTypeOf(&TransactionError{}))
		Expect(err.(*TransactionError).Code).To(Equal(ErrCommitFailed))

		stored, _ := syncer.Get(ctx)
		Expect(stored.Keys()).To(BeEmpty())
	})

	It("completes a transaction only once", func() {
		transaction, _ := manager.BeginTransaction(ctx)
		Expect(manager.CommitTransaction(ctx, transaction)).To(Succeed())

		err := manager.RollbackTransaction(transaction)
		Expect(err.(*TransactionError).Code).To(Equal(ErrNotPending))
		Expect(dbTransaction.rolledBack).To(BeFalse())
	})
})
