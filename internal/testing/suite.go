//go:build testing

package testing

import (
	"fmt"

	"github.com/stretchr/testify/suite"
)

// HazelcastTestSuite starts members for a test suite and keeps them until they are stopped.
type HazelcastTestSuite struct {
	suite.Suite
	members []HazelcastInstance
}

// StopMembers kills every member started by the suite.
func (suite *HazelcastTestSuite) StopMembers() {
	for _, m := range suite.members {
		if err := m.Kill(); err != nil {
			suite.T().Logf("failed to kill member %s: %s", m.Name(), err)
		}
	}
	suite.members = nil
}

// StartMember starts a member and fails the running test when it does not come up.
func (suite *HazelcastTestSuite) StartMember(opts ...MemberOption) HazelcastInstance {
	opts = append(opts, WithIndex(len(suite.members)))
	m, err := StartHazelcast(opts...)
	if err != nil {
		suite.T().Fatal("failed to start hazelcast member: ", err)
	}
	suite.members = append(suite.members, m)
	return m
}

func (suite *HazelcastTestSuite) MemberCount() int {
	return len(suite.members)
}

func (suite *HazelcastTestSuite) Member(idx int) HazelcastInstance {
	if idx < 0 || idx >= len(suite.members) {
		return nil
	}
	return suite.members[idx]
}

// KillMember kills the member at idx and forgets it; later members move down by one.
func (suite *HazelcastTestSuite) KillMember(idx int) error {
	if idx < 0 || idx >= len(suite.members) {
		return fmt.Errorf("no member %d, %d running", idx, len(suite.members))
	}
	m := suite.members[idx]
	suite.members = append(suite.members[:idx], suite.members[idx+1:]...)
	if err := m.Kill(); err != nil {
		return fmt.Errorf("failed to kill member %s: %w", m.Name(), err)
	}
	return nil
}
