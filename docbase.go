// Package docbase provides a personal documentation knowledge base.
// It ingests technical documentation (crawled web pages or imported local
// files), indexes it for semantic retrieval, and answers natural language
// questions by combining retrieved passages with a large language model.
// The same indexed corpus also drives structured learning artifacts
// (multi-step lessons and multiple-choice quizzes).
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, crawl/).
package docbase
