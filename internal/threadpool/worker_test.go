package threadpool

import (
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/suite"
)

// Test_Worker_TestSuite executes the test suite for worker job handling.
func Test_Worker_TestSuite(t *testing.T) {
	suite.Run(t, new(Worker_TestSuite))
}

// Worker_TestSuite tests how a worker deals with misbehaving jobs.
type Worker_TestSuite struct {
	suite.Suite
}

// Test_Worker_SurvivesPanickingJob ensures a panic is recovered, logged and
// reported, and that the worker goes on to run the next job.
func (suite *Worker_TestSuite) Test_Worker_SurvivesPanickingJob() {
	logger, hook := logtest.NewNullLogger()
	m := NewMetrics(nil, "test", "pool")

	type report struct {
		workerID  int
		recovered any
	}
	reports := make(chan report, 1)

	p := MustNew(1,
		WithLogger(logger),
		WithMetrics(m),
		WithPanicHandler(func(workerID int, recovered any) {
			reports <- report{workerID, recovered}
		}),
	)

	var after atomic.Bool
	suite.Require().NoError(p.Submit(func() { panic("boom") }))
	suite.Require().NoError(p.Submit(func() { after.Store(true) }))
	suite.Require().NoError(p.Close())

	suite.Require().True(after.Load(), "job after the panic did not run")

	select {
	case r := <-reports:
		suite.Require().Equal(0, r.workerID)
		suite.Require().Equal("boom", r.recovered)
	default:
		suite.FailNow("panic handler was not called")
	}

	suite.Require().Equal(float64(1), testutil.ToFloat64(m.JobsPanicked))
	suite.Require().Equal(float64(1), testutil.ToFloat64(m.JobsCompleted))

	panicked := findEntry(hook, "job panicked")
	suite.Require().NotNil(panicked, "panic was not logged")
	suite.Require().Equal(logrus.ErrorLevel, panicked.Level)
	suite.Require().Equal("boom", panicked.Data["panic"])
	suite.Require().Equal(0, panicked.Data["worker"])
}

// Test_Worker_SurvivesPanickingHandler ensures a panic raised by the panic
// handler is contained and the worker keeps serving jobs.
func (suite *Worker_TestSuite) Test_Worker_SurvivesPanickingHandler() {
	logger, hook := logtest.NewNullLogger()

	p := MustNew(1,
		WithLogger(logger),
		WithPanicHandler(func(int, any) {
			panic("handler boom")
		}),
	)

	var after atomic.Bool
	suite.Require().NoError(p.Submit(func() { panic("boom") }))
	suite.Require().NoError(p.Submit(func() { after.Store(true) }))
	suite.Require().NoError(p.Close())

	suite.Require().True(after.Load(), "job after the handler panic did not run")

	entry := findEntry(hook, "panic handler panicked")
	suite.Require().NotNil(entry, "handler panic was not logged")
	suite.Require().Equal("handler boom", entry.Data["panic"])
}

// Test_State_String ensures states have readable names.
func (suite *Worker_TestSuite) Test_State_String() {
	suite.Require().Equal("running", StateRunning.String())
	suite.Require().Equal("terminated", StateTerminated.String())
	suite.Require().Equal("unknown", State(7).String())
}

func findEntry(hook *logtest.Hook, message string) *logrus.Entry {
	var found *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == message {
			found = e
		}
	}
	return found
}
