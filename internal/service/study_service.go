package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/arch2702/smart-study-scheduler/internal/clock"
	"github.com/arch2702/smart-study-scheduler/internal/domain"
	"github.com/arch2702/smart-study-scheduler/internal/events"
	"github.com/arch2702/smart-study-scheduler/internal/platform/logger"
	"github.com/arch2702/smart-study-scheduler/internal/store"
	"github.com/google/uuid"
)

// TopicParams carries the fields of a new topic.
type TopicParams struct {
	SubjectID  uuid.UUID
	Title      string
	Notes      string
	Difficulty domain.Difficulty
}

// TopicUpdate carries the editable fields of a topic. An empty Difficulty
// keeps the current one.
type TopicUpdate struct {
	Title      string
	Notes      string
	Difficulty domain.Difficulty
}

// StudyService manages a learner's subjects and topics. Every method is
// scoped to learnerID: resources owned by someone else are reported as not
// found.
type StudyService interface {
	CreateSubject(ctx context.Context, learnerID uuid.UUID, params domain.SubjectParams) (*domain.Subject, error)
	ListSubjects(ctx context.Context, learnerID uuid.UUID) ([]*domain.Subject, error)
	GetSubject(ctx context.Context, learnerID, subjectID uuid.UUID) (*domain.Subject, error)
	UpdateSubject(ctx context.Context, learnerID, subjectID uuid.UUID, params domain.SubjectParams) (*domain.Subject, error)

	// DeleteSubject removes the subject and its topics. Points already
	// earned on those topics stay in the ledger and the balance.
	DeleteSubject(ctx context.Context, learnerID, subjectID uuid.UUID) error

	CreateTopic(ctx context.Context, learnerID uuid.UUID, params TopicParams) (*domain.Topic, error)
	ListTopics(ctx context.Context, learnerID, subjectID uuid.UUID) ([]*domain.Topic, error)
	GetTopic(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error)
	UpdateTopic(ctx context.Context, learnerID, topicID uuid.UUID, update TopicUpdate) (*domain.Topic, error)
	DeleteTopic(ctx context.Context, learnerID, topicID uuid.UUID) error
}

type studyService struct {
	uow         store.UnitOfWork
	provisioner *LearnerProvisioner
	emitter     events.Emitter
	clock       clock.Clock
	logger      *slog.Logger
}

var _ StudyService = (*studyService)(nil)

// NewStudyService creates a StudyService. Changes to topics are announced
// through emitter as events.TypeStudyPlanChanged; a nil emitter discards
// them.
func NewStudyService(
	uow store.UnitOfWork,
	provisioner *LearnerProvisioner,
	emitter events.Emitter,
	clk clock.Clock,
	logger *slog.Logger,
) StudyService {
	if uow == nil {
		panic("uow cannot be nil")
	}
	if provisioner == nil {
		panic("provisioner cannot be nil")
	}
	if emitter == nil {
		emitter = events.NopEmitter{}
	}
	if clk == nil {
		clk = clock.Real
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &studyService{
		uow:         uow,
		provisioner: provisioner,
		emitter:     emitter,
		clock:       clk,
		logger:      logger.With(slog.String("component", "study_service")),
	}
}

// passThrough reports whether err is an expected condition that callers
// should see unwrapped.
func passThrough(err error) bool {
	return store.IsNotFoundError(err) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidDifficulty) ||
		isFieldError(err)
}

// isFieldError matches the plain validation sentinels returned by entity
// constructors.
func isFieldError(err error) bool {
	for _, target := range []error{
		domain.ErrSubjectTitleEmpty,
		domain.ErrSubjectDateRange,
		domain.ErrSubjectDailyHours,
		domain.ErrTopicTitleEmpty,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (s *studyService) fail(ctx context.Context, op, msg string, learnerID uuid.UUID, err error) error {
	if passThrough(err) {
		return err
	}
	logger.FromContextOrDefault(ctx, s.logger).Error(msg,
		slog.String("operation", op),
		slog.String("learner_id", learnerID.String()),
		slog.String("error", err.Error()))
	return NewServiceError(op, msg, err)
}

// planChanged tells listeners that the learner's topics changed outside
// the lifecycle, which affects cached due-review lists.
func (s *studyService) planChanged(ctx context.Context, learnerID uuid.UUID) {
	event, err := events.NewEvent(events.TypeStudyPlanChanged, learnerID, nil, s.clock.Now())
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to publish plan change",
			slog.String("learner_id", learnerID.String()),
			slog.String("error", err.Error()))
	}
}

func ownedSubject(ctx context.Context, repos store.Repositories, learnerID, subjectID uuid.UUID) (*domain.Subject, error) {
	subject, err := repos.Subjects.GetByID(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if subject.LearnerID != learnerID {
		return nil, store.ErrSubjectNotFound
	}
	return subject, nil
}

func ownedTopic(ctx context.Context, repos store.Repositories, learnerID, topicID uuid.UUID) (*domain.Topic, error) {
	topic, err := repos.Topics.GetByID(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.LearnerID != learnerID {
		return nil, store.ErrTopicNotFound
	}
	return topic, nil
}

// OwnedTopic loads a topic through repos and reports topics of other
// learners as store.ErrTopicNotFound.
func OwnedTopic(ctx context.Context, repos store.Repositories, learnerID, topicID uuid.UUID) (*domain.Topic, error) {
	return ownedTopic(ctx, repos, learnerID, topicID)
}

func (s *studyService) CreateSubject(
	ctx context.Context,
	learnerID uuid.UUID,
	params domain.SubjectParams,
) (*domain.Subject, error) {
	const op = "create_subject"

	subject, err := domain.NewSubject(learnerID, params, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if _, err := s.provisioner.Ensure(ctx, learnerID); err != nil {
		return nil, s.fail(ctx, op, "failed to provision learner", learnerID, err)
	}

	err = s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		return repos.Subjects.Create(ctx, subject)
	})
	if err != nil {
		return nil, s.fail(ctx, op, "failed to create subject", learnerID, err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("subject created",
		slog.String("learner_id", learnerID.String()),
		slog.String("subject_id", subject.ID.String()))
	return subject, nil
}

func (s *studyService) ListSubjects(ctx context.Context, learnerID uuid.UUID) ([]*domain.Subject, error) {
	var subjects []*domain.Subject
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		var err error
		subjects, err = repos.Subjects.ListByLearner(ctx, learnerID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "list_subjects", "failed to list subjects", learnerID, err)
	}
	return subjects, nil
}

func (s *studyService) GetSubject(ctx context.Context, learnerID, subjectID uuid.UUID) (*domain.Subject, error) {
	var subject *domain.Subject
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		var err error
		subject, err = ownedSubject(ctx, repos, learnerID, subjectID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "get_subject", "failed to get subject", learnerID, err)
	}
	return subject, nil
}

func (s *studyService) UpdateSubject(
	ctx context.Context,
	learnerID, subjectID uuid.UUID,
	params domain.SubjectParams,
) (*domain.Subject, error) {
	var subject *domain.Subject
	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		var err error
		subject, err = ownedSubject(ctx, repos, learnerID, subjectID)
		if err != nil {
			return err
		}
		if err := subject.Update(params, s.clock.Now()); err != nil {
			return err
		}
		return repos.Subjects.Update(ctx, subject)
	})
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, store.ErrSubjectNotFound
		}
		return nil, s.fail(ctx, "update_subject", "failed to update subject", learnerID, err)
	}
	return subject, nil
}

func (s *studyService) DeleteSubject(ctx context.Context, learnerID, subjectID uuid.UUID) error {
	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		if _, err := ownedSubject(ctx, repos, learnerID, subjectID); err != nil {
			return err
		}
		return repos.Subjects.Delete(ctx, subjectID)
	})
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return store.ErrSubjectNotFound
		}
		return s.fail(ctx, "delete_subject", "failed to delete subject", learnerID, err)
	}

	s.planChanged(ctx, learnerID)
	logger.FromContextOrDefault(ctx, s.logger).Debug("subject deleted",
		slog.String("learner_id", learnerID.String()),
		slog.String("subject_id", subjectID.String()))
	return nil
}

func (s *studyService) CreateTopic(ctx context.Context, learnerID uuid.UUID, params TopicParams) (*domain.Topic, error) {
	topic, err := domain.NewTopic(learnerID, params.SubjectID, params.Title, params.Notes, params.Difficulty, s.clock.Now())
	if err != nil {
		return nil, err
	}

	err = s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		if _, err := ownedSubject(ctx, repos, learnerID, params.SubjectID); err != nil {
			return err
		}
		return repos.Topics.Create(ctx, topic)
	})
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, store.ErrSubjectNotFound
		}
		return nil, s.fail(ctx, "create_topic", "failed to create topic", learnerID, err)
	}
	s.planChanged(ctx, learnerID)
	return topic, nil
}

func (s *studyService) ListTopics(ctx context.Context, learnerID, subjectID uuid.UUID) ([]*domain.Topic, error) {
	var topics []*domain.Topic
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		if _, err := ownedSubject(ctx, repos, learnerID, subjectID); err != nil {
			return err
		}
		var err error
		topics, err = repos.Topics.ListBySubject(ctx, subjectID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "list_topics", "failed to list topics", learnerID, err)
	}
	return topics, nil
}

func (s *studyService) GetTopic(ctx context.Context, learnerID, topicID uuid.UUID) (*domain.Topic, error) {
	var topic *domain.Topic
	err := s.uow.Snapshot(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		var err error
		topic, err = ownedTopic(ctx, repos, learnerID, topicID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "get_topic", "failed to get topic", learnerID, err)
	}
	return topic, nil
}

func (s *studyService) UpdateTopic(
	ctx context.Context,
	learnerID, topicID uuid.UUID,
	update TopicUpdate,
) (*domain.Topic, error) {
	var topic *domain.Topic
	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		var err error
		topic, err = ownedTopic(ctx, repos, learnerID, topicID)
		if err != nil {
			return err
		}
		if err := topic.UpdateDetails(update.Title, update.Notes, update.Difficulty, s.clock.Now()); err != nil {
			return err
		}
		return repos.Topics.Update(ctx, topic)
	})
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return nil, store.ErrTopicNotFound
		}
		return nil, s.fail(ctx, "update_topic", "failed to update topic", learnerID, err)
	}
	s.planChanged(ctx, learnerID)
	return topic, nil
}

func (s *studyService) DeleteTopic(ctx context.Context, learnerID, topicID uuid.UUID) error {
	err := s.uow.Within(ctx, learnerID, func(ctx context.Context, repos store.Repositories) error {
		if _, err := ownedTopic(ctx, repos, learnerID, topicID); err != nil {
			return err
		}
		return repos.Topics.Delete(ctx, topicID)
	})
	if err != nil {
		if errors.Is(err, store.ErrLearnerNotFound) {
			return store.ErrTopicNotFound
		}
		return s.fail(ctx, "delete_topic", "failed to delete topic", learnerID, err)
	}
	s.planChanged(ctx, learnerID)
	return nil
}
