package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/surveycraft/survey-service/internal/models"
	"github.com/surveycraft/survey-service/internal/repositories"
)

// fakeStore is a shared in-memory backing store. Progress rows carry a
// per-pair mutex so GetBySurveyAndRespondentForUpdate serializes
// concurrent transactions the way a database row lock does.
type fakeStore struct {
	mu sync.Mutex

	nextID    uint
	surveys   map[uint]*models.Survey
	questions map[uint]*models.Question
	answers   map[string]*models.Answer         // question:respondent
	progress  map[string]*models.SurveyProgress // survey:respondent
	users     map[string]*models.User

	rowLocks map[string]*sync.Mutex
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:    1,
		surveys:   make(map[uint]*models.Survey),
		questions: make(map[uint]*models.Question),
		answers:   make(map[string]*models.Answer),
		progress:  make(map[string]*models.SurveyProgress),
		users:     make(map[string]*models.User),
		rowLocks:  make(map[string]*sync.Mutex),
	}
}

func (s *fakeStore) allocID() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeStore) rowLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.rowLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.rowLocks[key] = lock
	}
	return lock
}

func progressKey(surveyID uint, respondentID string) string {
	return fmt.Sprintf("%d:%s", surveyID, respondentID)
}

func answerKey(questionID uint, respondentID string) string {
	return fmt.Sprintf("%d:%s", questionID, respondentID)
}

func copyProgress(p *models.SurveyProgress) *models.SurveyProgress {
	cp := *p
	cp.AnsweredQuestions = append([]uint(nil), p.AnsweredQuestions...)
	return &cp
}

// fakeRepository implements repositories.TransactionRepository over a
// fakeStore. Begin returns a repository sharing the store that holds the
// row locks it acquires until Commit or Rollback.
type fakeRepository struct {
	store *fakeStore
	inTx  bool

	lockMu sync.Mutex
	held   []*sync.Mutex
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{store: newFakeStore()}
}

func (r *fakeRepository) Survey() repositories.SurveyRepository     { return &fakeSurveyRepo{r.store} }
func (r *fakeRepository) Question() repositories.QuestionRepository { return &fakeQuestionRepo{r.store} }
func (r *fakeRepository) Answer() repositories.AnswerRepository     { return &fakeAnswerRepo{r.store} }
func (r *fakeRepository) Progress() repositories.ProgressRepository {
	repo := &fakeProgressRepo{store: r.store}
	if r.inTx {
		repo.tx = r
	}
	return repo
}
func (r *fakeRepository) User() repositories.UserRepository { return &fakeUserRepo{r.store} }

func (r *fakeRepository) Begin(ctx context.Context) (repositories.Repository, error) {
	return &fakeRepository{store: r.store, inTx: true}, nil
}

func (r *fakeRepository) Commit(ctx context.Context) error {
	r.releaseLocks()
	return nil
}

func (r *fakeRepository) Rollback(ctx context.Context) error {
	r.releaseLocks()
	return nil
}

func (r *fakeRepository) holdLock(lock *sync.Mutex) {
	r.lockMu.Lock()
	r.held = append(r.held, lock)
	r.lockMu.Unlock()
}

func (r *fakeRepository) releaseLocks() {
	r.lockMu.Lock()
	defer r.lockMu.Unlock()
	for _, lock := range r.held {
		lock.Unlock()
	}
	r.held = nil
}

// ===== SURVEY =====

type fakeSurveyRepo struct{ store *fakeStore }

func (f *fakeSurveyRepo) Create(ctx context.Context, survey *models.Survey) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, s := range f.store.surveys {
		if s.Title == survey.Title {
			return gorm.ErrDuplicatedKey
		}
	}
	survey.ID = f.store.allocID()
	cp := *survey
	f.store.surveys[survey.ID] = &cp
	return nil
}

func (f *fakeSurveyRepo) GetByID(ctx context.Context, id uint) (*models.Survey, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	survey, ok := f.store.surveys[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *survey
	return &cp, nil
}

func (f *fakeSurveyRepo) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Survey, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	survey, ok := f.store.surveys[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *survey
	cp.Questions = nil
	for _, q := range f.store.questions {
		if q.SurveyID == id {
			cp.Questions = append(cp.Questions, *q)
		}
	}
	sort.Slice(cp.Questions, func(i, j int) bool {
		return cp.Questions[i].Order < cp.Questions[j].Order
	})
	cp.QuestionsCount = len(cp.Questions)
	return &cp, nil
}

func (f *fakeSurveyRepo) Update(ctx context.Context, survey *models.Survey) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.surveys[survey.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *survey
	cp.Questions = nil
	f.store.surveys[survey.ID] = &cp
	return nil
}

func (f *fakeSurveyRepo) Delete(ctx context.Context, id uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	delete(f.store.surveys, id)
	return nil
}

func (f *fakeSurveyRepo) List(ctx context.Context, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Survey
	for _, s := range f.store.surveys {
		cp := *s
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (f *fakeSurveyRepo) GetByCreator(ctx context.Context, creatorID string, filters repositories.SurveyFilters) ([]*models.Survey, int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Survey
	for _, s := range f.store.surveys {
		if s.CreatedBy == creatorID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeSurveyRepo) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, s := range f.store.surveys {
		if strings.EqualFold(s.Title, title) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSurveyRepo) SetQuestionOrder(ctx context.Context, surveyID uint, order []uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	survey, ok := f.store.surveys[surveyID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	survey.QuestionOrder = append([]uint(nil), order...)
	return nil
}

func (f *fakeSurveyRepo) GetQuestionCount(ctx context.Context, surveyID uint) (int, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	count := 0
	for _, q := range f.store.questions {
		if q.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}

// ===== QUESTION =====

type fakeQuestionRepo struct{ store *fakeStore }

func (f *fakeQuestionRepo) Create(ctx context.Context, question *models.Question) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	question.ID = f.store.allocID()
	cp := *question
	f.store.questions[question.ID] = &cp
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	q, ok := f.store.questions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *q
	return &cp, nil
}

func (f *fakeQuestionRepo) GetByIDWithOptions(ctx context.Context, id uint) (*models.Question, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeQuestionRepo) Update(ctx context.Context, question *models.Question) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.questions[question.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *question
	f.store.questions[question.ID] = &cp
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, id uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	delete(f.store.questions, id)
	return nil
}

func (f *fakeQuestionRepo) GetBySurvey(ctx context.Context, surveyID uint) ([]*models.Question, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Question
	for _, q := range f.store.questions {
		if q.SurveyID == surveyID {
			cp := *q
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeQuestionRepo) GetMaxOrder(ctx context.Context, surveyID uint) (int, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	max := -1
	for _, q := range f.store.questions {
		if q.SurveyID == surveyID && q.Order > max {
			max = q.Order
		}
	}
	return max, nil
}

func (f *fakeQuestionRepo) CountBySurvey(ctx context.Context, surveyID uint) (int64, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var count int64
	for _, q := range f.store.questions {
		if q.SurveyID == surveyID {
			count++
		}
	}
	return count, nil
}

func (f *fakeQuestionRepo) ReorderQuestions(ctx context.Context, surveyID uint, orders []repositories.QuestionOrder) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, o := range orders {
		if q, ok := f.store.questions[o.QuestionID]; ok && q.SurveyID == surveyID {
			q.Order = o.Order
		}
	}
	return nil
}

func (f *fakeQuestionRepo) CreateOptions(ctx context.Context, options []*models.ResponseOption) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, opt := range options {
		opt.ID = f.store.allocID()
		if q, ok := f.store.questions[opt.QuestionID]; ok {
			q.Options = append(q.Options, *opt)
		}
	}
	return nil
}

func (f *fakeQuestionRepo) DeleteOptionsByQuestion(ctx context.Context, questionID uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if q, ok := f.store.questions[questionID]; ok {
		q.Options = nil
	}
	return nil
}

func (f *fakeQuestionRepo) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for id, q := range f.store.questions {
		if q.SurveyID == surveyID {
			delete(f.store.questions, id)
		}
	}
	return nil
}

// ===== ANSWER =====

type fakeAnswerRepo struct{ store *fakeStore }

func (f *fakeAnswerRepo) Upsert(ctx context.Context, answer *models.Answer) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := answerKey(answer.QuestionID, answer.RespondentID)
	if existing, ok := f.store.answers[key]; ok {
		answer.ID = existing.ID
	} else {
		answer.ID = f.store.allocID()
	}
	cp := *answer
	f.store.answers[key] = &cp
	return nil
}

func (f *fakeAnswerRepo) GetByID(ctx context.Context, id uint) (*models.Answer, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, a := range f.store.answers {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAnswerRepo) Delete(ctx context.Context, id uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for key, a := range f.store.answers {
		if a.ID == id {
			delete(f.store.answers, key)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeAnswerRepo) GetByQuestionAndRespondent(ctx context.Context, questionID uint, respondentID string) (*models.Answer, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	a, ok := f.store.answers[answerKey(questionID, respondentID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnswerRepo) GetBySurveyAndRespondent(ctx context.Context, surveyID uint, respondentID string) ([]*models.Answer, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Answer
	for _, a := range f.store.answers {
		if a.SurveyID == surveyID && a.RespondentID == respondentID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAnswerRepo) GetByQuestion(ctx context.Context, questionID uint, filters repositories.AnswerFilters) ([]*models.Answer, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Answer
	for _, a := range f.store.answers {
		if a.QuestionID == questionID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAnswerRepo) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.AnswerFilters) ([]*models.Answer, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.Answer
	for _, a := range f.store.answers {
		if a.SurveyID == surveyID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAnswerRepo) GetSurveyStats(ctx context.Context, surveyID uint) (*repositories.SurveyAnswerStats, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	stats := &repositories.SurveyAnswerStats{
		AnswersPerDay:     make(map[string]int),
		AnswersByQuestion: make(map[uint]int),
	}
	for _, a := range f.store.answers {
		if a.SurveyID == surveyID {
			stats.TotalAnswers++
			stats.AnswersByQuestion[a.QuestionID]++
		}
	}
	return stats, nil
}

func (f *fakeAnswerRepo) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for key, a := range f.store.answers {
		if a.SurveyID == surveyID {
			delete(f.store.answers, key)
		}
	}
	return nil
}

func (f *fakeAnswerRepo) DeleteByQuestion(ctx context.Context, questionID uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for key, a := range f.store.answers {
		if a.QuestionID == questionID {
			delete(f.store.answers, key)
		}
	}
	return nil
}

// ===== PROGRESS =====

type fakeProgressRepo struct {
	store *fakeStore
	tx    *fakeRepository
}

func (f *fakeProgressRepo) Create(ctx context.Context, progress *models.SurveyProgress) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := progressKey(progress.SurveyID, progress.RespondentID)
	if _, ok := f.store.progress[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	progress.ID = f.store.allocID()
	f.store.progress[key] = copyProgress(progress)
	return nil
}

func (f *fakeProgressRepo) GetByID(ctx context.Context, id uint) (*models.SurveyProgress, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, p := range f.store.progress {
		if p.ID == id {
			return copyProgress(p), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProgressRepo) Update(ctx context.Context, progress *models.SurveyProgress) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	key := progressKey(progress.SurveyID, progress.RespondentID)
	if _, ok := f.store.progress[key]; !ok {
		return gorm.ErrRecordNotFound
	}
	f.store.progress[key] = copyProgress(progress)
	return nil
}

func (f *fakeProgressRepo) GetBySurveyAndRespondent(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.progress[progressKey(surveyID, respondentID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyProgress(p), nil
}

func (f *fakeProgressRepo) GetBySurveyAndRespondentForUpdate(ctx context.Context, surveyID uint, respondentID string) (*models.SurveyProgress, error) {
	key := progressKey(surveyID, respondentID)
	lock := f.store.rowLock(key)
	lock.Lock()
	if f.tx != nil {
		f.tx.holdLock(lock)
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	p, ok := f.store.progress[key]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyProgress(p), nil
}

func (f *fakeProgressRepo) GetBySurvey(ctx context.Context, surveyID uint, filters repositories.ParticipantFilters) ([]*models.SurveyProgress, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.SurveyProgress
	for _, p := range f.store.progress {
		if p.SurveyID != surveyID {
			continue
		}
		if filters.Status != nil && p.Status != *filters.Status {
			continue
		}
		if filters.MinProgress != nil && p.Progress < *filters.MinProgress {
			continue
		}
		if filters.DateFrom != nil && (p.StartedAt == nil || p.StartedAt.Before(*filters.DateFrom)) {
			continue
		}
		if filters.DateTo != nil && (p.StartedAt == nil || p.StartedAt.After(*filters.DateTo)) {
			continue
		}
		out = append(out, copyProgress(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeProgressRepo) GetByRespondent(ctx context.Context, respondentID string) ([]*models.SurveyProgress, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	var out []*models.SurveyProgress
	for _, p := range f.store.progress {
		if p.RespondentID == respondentID {
			out = append(out, copyProgress(p))
		}
	}
	return out, nil
}

func (f *fakeProgressRepo) GetCompletionStats(ctx context.Context, surveyID uint) (repositories.CompletionStats, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, p := range f.store.progress {
		if p.SurveyID != surveyID {
			continue
		}
		key := strings.ToLower(string(p.Status))
		sums[key] += p.Progress
		counts[key]++
	}
	stats := make(repositories.CompletionStats, len(counts))
	for key, count := range counts {
		stats[key] = repositories.StatusStats{
			Count:       count,
			AvgProgress: sums[key] / count,
		}
	}
	return stats, nil
}

func (f *fakeProgressRepo) DeleteBySurvey(ctx context.Context, surveyID uint) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for key, p := range f.store.progress {
		if p.SurveyID == surveyID {
			delete(f.store.progress, key)
		}
	}
	return nil
}

// ===== USER =====

type fakeUserRepo struct{ store *fakeStore }

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	cp := *user
	f.store.users[user.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	u, ok := f.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	for _, u := range f.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	if _, ok := f.store.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	f.store.users[user.ID] = &cp
	return nil
}
