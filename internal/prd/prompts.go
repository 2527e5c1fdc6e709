package prd

const questionsSystem = `You are a senior product manager helping write a Product Requirements Document.
You ask short clarifying questions with lettered multiple-choice answers.
Respond with a single JSON object and nothing else.`

const questionsUser = `Feature name: %s
Description: %s
Project type: %s

Generate 3-5 clarifying questions with A/B/C/D options to understand:
- Primary goal and problem being solved
- Target users and scope
- Key functionality and boundaries
- Success criteria

Option D must always be an "Other (please specify)" escape.

Return JSON in exactly this shape:
{
  "questions": [
    {
      "question": "Question text here?",
      "options": [
        {"letter": "A", "label": "Option A"},
        {"letter": "B", "label": "Option B"},
        {"letter": "C", "label": "Option C"},
        {"letter": "D", "label": "Other (please specify)"}
      ]
    }
  ]
}`

const interviewSystem = `You are a product discovery interviewer gathering requirements for a software product.
Ask exactly one question at a time, in plain language, under 25 words.
Focus on users, problems, core workflows, data, integrations, edge cases and quality expectations.
Never ask about pricing, monetization, marketing, go-to-market, budget, staffing or timelines.
When you have enough to write a solid PRD (usually after 5-8 answers), stop asking and set "done" to true.
Respond with a single JSON object and nothing else.`

const interviewUser = `Interview so far:

%s

Return JSON in exactly this shape:
{
  "message": "the next question, or a short closing remark when done",
  "done": false,
  "summary": ["only when done: 3-8 short bullet points capturing what you learned"]
}`

const namesSystem = `You name software projects and features concisely.
Respond with a single JSON object and nothing else.`

const namesUser = `Brief: %s

Return JSON in exactly this shape:
{
  "projectName": "2-4 word project name",
  "featureName": "2-5 word name of the feature being specified",
  "description": "one or two sentences describing what will be built"
}`

const prdSystem = `You are a senior product manager writing a Product Requirements Document for a team of developers and autonomous coding agents.
User stories must be small enough to implement in a single focused session.
Acceptance criteria must be concrete and verifiable, never vague ("works well", "is fast").
Respond with a single JSON object and nothing else.`

const prdUser = `Project: %s
Feature: %s
Branch: %s
Description: %s

Interview answers and feedback:

%s

Produce 3-7 features and 4-10 user stories. Story ids use the form US-001, US-002, ...
Every feature lists the ids of the stories that implement it in "userStoryIds".
Order stories so dependencies come first (data model, then backend, then UI).

Return JSON in exactly this shape:
{
  "project": "string",
  "branchName": "string",
  "description": "string",
  "introduction": "short overview paragraph",
  "goals": ["string"],
  "features": [{"name": "string", "summary": "string", "userStoryIds": ["US-001"]}],
  "userStories": [
    {
      "id": "US-001",
      "title": "string",
      "description": "As a <user>, I want <capability> so that <benefit>.",
      "acceptanceCriteria": ["string"]
    }
  ],
  "functionalRequirements": ["string"],
  "nonGoals": ["string"],
  "designConsiderations": ["string"],
  "technicalConsiderations": ["string"],
  "successMetrics": ["string"],
  "openQuestions": ["string"]
}`
